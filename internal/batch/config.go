// Package batch decodes symbols from many image files with a bounded
// worker pool.
package batch

import (
	"image/color"
	"runtime"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Parallel processing settings
	Workers int // 0 = runtime.NumCPU()

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Error policy. When false the first unreadable image stops the batch.
	// Images without a symbol never stop it.
	ContinueOnError bool

	// Overlay output
	OverlayDir   string
	OverlayColor color.Color

	// Progress reporting, may be nil
	Progress ProgressCallback
}

// DefaultConfig returns sensible defaults for batch processing.
func DefaultConfig() Config {
	return Config{
		Workers:         runtime.NumCPU(),
		ContinueOnError: true,
		OverlayColor:    color.RGBA{R: 255, A: 255},
	}
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
