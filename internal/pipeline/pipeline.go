// Package pipeline wires image loading, preprocessing, symbol location and
// decoding into a single extractor.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/matrixscan/internal/decoder"
	"github.com/MeKo-Tech/matrixscan/internal/detector"
	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
)

// Config holds configuration for the extraction pipeline and its stages.
type Config struct {
	Preprocess  preprocess.Config
	Locator     detector.Config
	Decoder     decoder.Config
	Constraints utils.ImageConstraints
	DebugDir    string // Write intermediate rasters as PNGs here when set
}

// DefaultConfig returns a default pipeline config with stage defaults.
func DefaultConfig() Config {
	return Config{
		Preprocess:  preprocess.DefaultConfig(),
		Locator:     detector.DefaultConfig(),
		Decoder:     decoder.DefaultConfig(),
		Constraints: utils.DefaultImageConstraints(),
	}
}

// Validate checks every stage configuration.
func (c Config) Validate() error {
	var errs []error
	if err := c.Preprocess.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("preprocess: %w", err))
	}
	if err := c.Locator.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("locator: %w", err))
	}
	if err := c.Decoder.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("decoder: %w", err))
	}
	return errors.Join(errs...)
}

// Builder constructs an Extractor with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithPreprocess sets the preprocessing chain.
func (b *Builder) WithPreprocess(cfg preprocess.Config) *Builder {
	b.cfg.Preprocess = cfg
	return b
}

// WithBinarization selects the binarization method and toggles the blur.
func (b *Builder) WithBinarization(method preprocess.Method, blur bool) *Builder {
	if method != "" {
		b.cfg.Preprocess.Method = method
	}
	b.cfg.Preprocess.Blur = blur
	return b
}

// WithLocator sets the locator thresholds.
func (b *Builder) WithLocator(cfg detector.Config) *Builder {
	b.cfg.Locator = cfg
	return b
}

// WithSizeRange sets the accepted symbol size in pixels, applied to both
// width and height. Non-positive values keep the current bound.
func (b *Builder) WithSizeRange(minSize, maxSize int) *Builder {
	if minSize > 0 {
		b.cfg.Locator.MinWidth, b.cfg.Locator.MinHeight = minSize, minSize
	}
	if maxSize > 0 {
		b.cfg.Locator.MaxWidth, b.cfg.Locator.MaxHeight = maxSize, maxSize
	}
	return b
}

// WithDecoder sets the decoder parameters.
func (b *Builder) WithDecoder(cfg decoder.Config) *Builder {
	b.cfg.Decoder = cfg
	return b
}

// WithImageConstraints sets the accepted input dimensions.
func (b *Builder) WithImageConstraints(c utils.ImageConstraints) *Builder {
	b.cfg.Constraints = c
	return b
}

// WithDebugDir enables debug image dumps into dir.
func (b *Builder) WithDebugDir(dir string) *Builder {
	b.cfg.DebugDir = dir
	return b
}

// Config returns the configuration the builder would use.
func (b *Builder) Config() Config { return b.cfg }

// Build validates the configuration and returns an Extractor.
func (b *Builder) Build() (*Extractor, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return &Extractor{cfg: b.cfg}, nil
}
