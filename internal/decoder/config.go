package decoder

import (
	"errors"
	"fmt"
)

// Config holds the module classification parameters.
type Config struct {
	DarkLevel      uint8   // Pixels below this count as dark (default: 128)
	NormalizeRatio float64 // Normalizer marks a cell dark when dark > total/ratio (default: 1.75)
	AnalyzeRatio   float64 // Grid analyzer marks a cell dark when dark > total/ratio (default: 2)
	SampleRow      int     // Row scanned by grid-size estimation (default: 5)
}

// DefaultConfig returns the decoder defaults.
func DefaultConfig() Config {
	return Config{
		DarkLevel:      128,
		NormalizeRatio: 1.75,
		AnalyzeRatio:   2,
		SampleRow:      5,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.NormalizeRatio < 1 {
		errs = append(errs, fmt.Errorf("normalize ratio must be >= 1, got %.2f", c.NormalizeRatio))
	}
	if c.AnalyzeRatio < 1 {
		errs = append(errs, fmt.Errorf("analyze ratio must be >= 1, got %.2f", c.AnalyzeRatio))
	}
	if c.SampleRow < 0 {
		errs = append(errs, errors.New("sample row must be >= 0"))
	}
	return errors.Join(errs...)
}
