package detector

import (
	"errors"
	"fmt"
)

// Config holds the thresholds used while locating a symbol.
type Config struct {
	MinContourArea int // Components with bounding-box area <= this are dropped at extraction (default: 50)

	// Size filter, inclusive on both ends
	MinWidth  int // default: 50
	MaxWidth  int // default: 150
	MinHeight int // default: 50
	MaxHeight int // default: 150

	MinAspectRatio float64 // width/height lower bound, inclusive (default: 0.8)
	MaxAspectRatio float64 // width/height upper bound, inclusive (default: 1.2)
	MinSymbolSize  int     // Minimum width and height of an accepted symbol (default: 10)

	FinderInset   int   // Distance of the finder sample lines from the box edges (default: 5)
	DarkThreshold uint8 // Intensities <= this count as dark on finder lines (default: 50)
}

// DefaultConfig returns the locator defaults.
func DefaultConfig() Config {
	return Config{
		MinContourArea: 50,
		MinWidth:       50,
		MaxWidth:       150,
		MinHeight:      50,
		MaxHeight:      150,
		MinAspectRatio: 0.8,
		MaxAspectRatio: 1.2,
		MinSymbolSize:  10,
		FinderInset:    5,
		DarkThreshold:  50,
	}
}

// Validate checks the configuration for values the locator cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.MinContourArea < 0 {
		errs = append(errs, fmt.Errorf("min contour area must be >= 0, got %d", c.MinContourArea))
	}
	if c.MinWidth < 1 || c.MinHeight < 1 {
		errs = append(errs, fmt.Errorf("minimum size must be positive, got %dx%d", c.MinWidth, c.MinHeight))
	}
	if c.MaxWidth < c.MinWidth {
		errs = append(errs, fmt.Errorf("max width %d below min width %d", c.MaxWidth, c.MinWidth))
	}
	if c.MaxHeight < c.MinHeight {
		errs = append(errs, fmt.Errorf("max height %d below min height %d", c.MaxHeight, c.MinHeight))
	}
	if c.MinAspectRatio <= 0 || c.MaxAspectRatio < c.MinAspectRatio {
		errs = append(errs, fmt.Errorf("invalid aspect ratio range [%.2f, %.2f]", c.MinAspectRatio, c.MaxAspectRatio))
	}
	if c.MinSymbolSize < 1 {
		errs = append(errs, fmt.Errorf("min symbol size must be positive, got %d", c.MinSymbolSize))
	}
	if c.FinderInset < 0 {
		errs = append(errs, fmt.Errorf("finder inset must be >= 0, got %d", c.FinderInset))
	}
	if c.MinSymbolSize < 2*c.FinderInset {
		errs = append(errs, errors.New("min symbol size must leave room for both finder insets"))
	}
	return errors.Join(errs...)
}
