// Package decoder samples the module grid of a located symbol and turns its
// data modules into a numeric string.
package decoder

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/matrixscan/internal/detector"
	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// ErrDecodeFailure is returned when the region does not yield a usable grid.
var ErrDecodeFailure = errors.New("symbol decode failed")

// Result is the outcome of a successful decode. Value may be empty when the
// payload holds fewer than four bits.
type Result struct {
	Value    string
	GridSize int
	Bits     string
	Grid     *ModuleGrid
}

// DebugSink receives intermediate rasters of the decode stage.
type DebugSink interface {
	SaveRaster(name string, r *raster.Raster)
}

// Decoder decodes located symbol regions.
type Decoder struct {
	config Config
	debug  DebugSink
}

// Option customizes a Decoder.
type Option func(*Decoder)

// WithDebugSink routes the cropped and normalized rasters to sink.
func WithDebugSink(sink DebugSink) Option {
	return func(d *Decoder) { d.debug = sink }
}

// NewDecoder creates a decoder with the given configuration.
func NewDecoder(config Config, opts ...Option) (*Decoder, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoder config: %w", err)
	}
	d := &Decoder{config: config}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the decoder configuration.
func (d *Decoder) Config() Config { return d.config }

// symbolBox is the part of the region that is sampled: the leading edge
// pixel on the left and top is dropped. The box ends on the trailing edge
// pixel, which leaves one quiet-zone column and row after the last module.
func symbolBox(b raster.BoundingBox) raster.BoundingBox {
	return raster.Box(b.X+1, b.Y+1, b.Width-1, b.Height-1)
}

// Decode normalizes the region, samples its modules and decodes the payload.
func (d *Decoder) Decode(region *detector.Region) (*Result, error) {
	if region == nil || region.Raster == nil || region.Box.Width < 2 || region.Box.Height < 2 {
		return nil, fmt.Errorf("%w: empty region", ErrDecodeFailure)
	}
	box := symbolBox(region.Box)
	if _, ok := box.Intersect(region.Raster.Bounds()); !ok {
		return nil, fmt.Errorf("%w: region %v outside raster", ErrDecodeFailure, region.Box)
	}

	symbol := region.Raster.Crop(box)
	if symbol.Height() <= d.config.SampleRow {
		return nil, fmt.Errorf("%w: region of height %d too small to estimate grid", ErrDecodeFailure, symbol.Height())
	}
	d.save("symbol", symbol)

	gridSize := EstimateGridSize(symbol, d.config.SampleRow)
	normalized, ok := Normalize(symbol, gridSize, d.config)
	if !ok {
		return nil, fmt.Errorf("%w: degenerate grid size %d for %dx%d region",
			ErrDecodeFailure, gridSize, symbol.Width(), symbol.Height())
	}
	d.save("normalized", normalized)

	// The normalized raster is estimated again; the two counts agree on a
	// clean symbol but may differ when the sample row was noisy.
	gridSize = EstimateGridSize(normalized, d.config.SampleRow)
	grid, ok := Analyze(normalized, gridSize, d.config)
	if !ok {
		return nil, fmt.Errorf("%w: degenerate grid size %d after normalization", ErrDecodeFailure, gridSize)
	}

	bits := ExtractPayload(grid)
	value := DecodeNumeric(bits)
	slog.Debug("symbol decoded", "grid_size", gridSize, "bits", len(bits), "value", value)

	return &Result{Value: value, GridSize: gridSize, Bits: bits, Grid: grid}, nil
}

func (d *Decoder) save(name string, r *raster.Raster) {
	if d.debug != nil {
		d.debug.SaveRaster(name, r)
	}
}
