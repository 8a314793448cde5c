// Package preprocess turns decoded images into the binarized intensity
// raster the locator works on.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// Method selects how the grayscale raster is binarized.
type Method string

const (
	MethodAdaptive Method = "adaptive"
	MethodFixed    Method = "fixed"
	MethodNone     Method = "none"
)

// Config holds the preprocessing chain settings.
type Config struct {
	Blur      bool   // Apply the 5x5 binomial blur before binarizing (default: true)
	Method    Method // Binarization method (default: adaptive)
	BlockSize int    // Adaptive window edge in pixels, odd (default: 15)
	C         int    // Adaptive offset subtracted from the local mean (default: 10)
	Threshold uint8  // Fixed threshold; darker pixels become black (default: 128)
}

// DefaultConfig returns the default preprocessing chain.
func DefaultConfig() Config {
	return Config{
		Blur:      true,
		Method:    MethodAdaptive,
		BlockSize: 15,
		C:         10,
		Threshold: 128,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Method {
	case MethodAdaptive:
		if c.BlockSize < 3 || c.BlockSize%2 == 0 {
			return fmt.Errorf("adaptive block size must be odd and >= 3, got %d", c.BlockSize)
		}
	case MethodFixed, MethodNone:
	default:
		return fmt.Errorf("unknown binarization method %q", c.Method)
	}
	return nil
}

// DebugSink receives every intermediate raster of the chain.
type DebugSink interface {
	SaveRaster(name string, r *raster.Raster)
}

// Preprocessor runs grayscale conversion, optional blur and binarization.
type Preprocessor struct {
	config Config
	debug  DebugSink
}

// New creates a preprocessor. sink may be nil.
func New(config Config, sink DebugSink) (*Preprocessor, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Join(errors.New("invalid preprocess config"), err)
	}
	return &Preprocessor{config: config, debug: sink}, nil
}

// Apply runs the configured chain on img.
func (p *Preprocessor) Apply(img image.Image) *raster.Raster {
	gray := ToGray(img)
	p.save("gray", gray)

	r := gray
	if p.config.Blur {
		r = Blur(r)
		p.save("blurred", r)
	}

	switch p.config.Method {
	case MethodAdaptive:
		r = BinarizeAdaptive(r, p.config.BlockSize, p.config.C)
	case MethodFixed:
		r = BinarizeFixed(r, p.config.Threshold)
	case MethodNone:
		return r
	}
	p.save("binary", r)

	slog.Debug("image preprocessed",
		"width", r.Width(), "height", r.Height(),
		"blur", p.config.Blur, "method", string(p.config.Method))
	return r
}

func (p *Preprocessor) save(name string, r *raster.Raster) {
	if p.debug != nil {
		p.debug.SaveRaster(name, r)
	}
}

// ToGray converts img to luma intensities.
func ToGray(img image.Image) *raster.Raster {
	if g, ok := img.(*image.Gray); ok {
		return raster.FromImage(g)
	}
	gray := imaging.Grayscale(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	c := raster.NewCanvas(w, h)
	for y := range h {
		row := gray.Pix[y*gray.Stride:]
		for x := range w {
			c.Set(x, y, row[x*4])
		}
	}
	return c.Raster()
}
