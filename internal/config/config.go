package config

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/MeKo-Tech/matrixscan/internal/decoder"
	"github.com/MeKo-Tech/matrixscan/internal/detector"
	"github.com/MeKo-Tech/matrixscan/internal/pipeline"
	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
	"github.com/lucasb-eyer/go-colorful"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns a configuration with the stage defaults.
func DefaultConfig() Config {
	pre := preprocess.DefaultConfig()
	loc := detector.DefaultConfig()
	dec := decoder.DefaultConfig()
	img := utils.DefaultImageConstraints()

	return Config{
		LogLevel: "info",
		Verbose:  false,
		Preprocess: PreprocessConfig{
			Blur:      pre.Blur,
			Method:    string(pre.Method),
			BlockSize: pre.BlockSize,
			C:         pre.C,
			Threshold: int(pre.Threshold),
		},
		Locator: LocatorConfig{
			MinContourArea: loc.MinContourArea,
			MinWidth:       loc.MinWidth,
			MaxWidth:       loc.MaxWidth,
			MinHeight:      loc.MinHeight,
			MaxHeight:      loc.MaxHeight,
			MinAspectRatio: loc.MinAspectRatio,
			MaxAspectRatio: loc.MaxAspectRatio,
			MinSymbolSize:  loc.MinSymbolSize,
			FinderInset:    loc.FinderInset,
			DarkThreshold:  int(loc.DarkThreshold),
		},
		Decoder: DecoderConfig{
			DarkLevel:      int(dec.DarkLevel),
			NormalizeRatio: dec.NormalizeRatio,
			AnalyzeRatio:   dec.AnalyzeRatio,
			SampleRow:      dec.SampleRow,
		},
		Image: ImageConfig{
			MaxWidth:  img.MaxWidth,
			MaxHeight: img.MaxHeight,
			MinWidth:  img.MinWidth,
			MinHeight: img.MinHeight,
		},
		Output: OutputConfig{
			Format:          pipeline.FormatText,
			OverlayBoxColor: "#FF0000",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimit:       0,
		},
		Batch: BatchConfig{
			Workers:         4,
			Recursive:       false,
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", ")))
	}
	if c.Output.Format != "" && !slices.Contains(pipeline.OutputFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(pipeline.OutputFormats, ", ")))
	}
	if c.Output.OverlayBoxColor != "" {
		if _, err := ParseHexColor(c.Output.OverlayBoxColor); err != nil {
			errs = append(errs, err)
		}
	}

	errs = append(errs,
		validateByte(c.Preprocess.Threshold, "preprocess.threshold"),
		validateByte(c.Locator.DarkThreshold, "locator.dark_threshold"),
		validateByte(c.Decoder.DarkLevel, "decoder.dark_level"),
	)

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB))
	}
	if c.Server.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("invalid rate limit: %d (must be >= 0)", c.Server.RateLimit))
	}
	if c.Batch.Workers <= 0 {
		errs = append(errs, fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	// Stage configs are only checked once the raw values fit their types.
	return c.ToPipelineConfig().Validate()
}

// ToPipelineConfig converts the config to the internal pipeline configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Preprocess:  c.toPreprocessConfig(),
		Locator:     c.toLocatorConfig(),
		Decoder:     c.toDecoderConfig(),
		Constraints: c.toImageConstraints(),
		DebugDir:    c.Output.DebugDir,
	}
}

func (c *Config) toPreprocessConfig() preprocess.Config {
	return preprocess.Config{
		Blur:      c.Preprocess.Blur,
		Method:    preprocess.Method(strings.ToLower(c.Preprocess.Method)),
		BlockSize: c.Preprocess.BlockSize,
		C:         c.Preprocess.C,
		Threshold: uint8(c.Preprocess.Threshold), //nolint:gosec // G115: range checked in Validate
	}
}

func (c *Config) toLocatorConfig() detector.Config {
	return detector.Config{
		MinContourArea: c.Locator.MinContourArea,
		MinWidth:       c.Locator.MinWidth,
		MaxWidth:       c.Locator.MaxWidth,
		MinHeight:      c.Locator.MinHeight,
		MaxHeight:      c.Locator.MaxHeight,
		MinAspectRatio: c.Locator.MinAspectRatio,
		MaxAspectRatio: c.Locator.MaxAspectRatio,
		MinSymbolSize:  c.Locator.MinSymbolSize,
		FinderInset:    c.Locator.FinderInset,
		DarkThreshold:  uint8(c.Locator.DarkThreshold), //nolint:gosec // G115: range checked in Validate
	}
}

func (c *Config) toDecoderConfig() decoder.Config {
	return decoder.Config{
		DarkLevel:      uint8(c.Decoder.DarkLevel), //nolint:gosec // G115: range checked in Validate
		NormalizeRatio: c.Decoder.NormalizeRatio,
		AnalyzeRatio:   c.Decoder.AnalyzeRatio,
		SampleRow:      c.Decoder.SampleRow,
	}
}

func (c *Config) toImageConstraints() utils.ImageConstraints {
	return utils.ImageConstraints{
		MaxWidth:  c.Image.MaxWidth,
		MaxHeight: c.Image.MaxHeight,
		MinWidth:  c.Image.MinWidth,
		MinHeight: c.Image.MinHeight,
	}
}

// ParseHexColor parses colors like "#RRGGBB", "RRGGBB" or the short "#RGB".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 3 && len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q (want #RRGGBB)", s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// validateByte checks that value fits an 8-bit intensity.
func validateByte(value int, name string) error {
	if value < 0 || value > 255 {
		return fmt.Errorf("invalid %s: %d (must be between 0 and 255)", name, value)
	}
	return nil
}
