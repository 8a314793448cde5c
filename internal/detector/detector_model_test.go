package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 50, cfg.MinContourArea)
	assert.Equal(t, 50, cfg.MinWidth)
	assert.Equal(t, 150, cfg.MaxWidth)
	assert.Equal(t, 50, cfg.MinHeight)
	assert.Equal(t, 150, cfg.MaxHeight)
	assert.InDelta(t, 0.8, cfg.MinAspectRatio, 1e-9)
	assert.InDelta(t, 1.2, cfg.MaxAspectRatio, 1e-9)
	assert.Equal(t, 10, cfg.MinSymbolSize)
	assert.Equal(t, 5, cfg.FinderInset)
	assert.Equal(t, uint8(50), cfg.DarkThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative area", func(c *Config) { c.MinContourArea = -1 }},
		{"zero min width", func(c *Config) { c.MinWidth = 0 }},
		{"max below min width", func(c *Config) { c.MaxWidth = 10 }},
		{"max below min height", func(c *Config) { c.MaxHeight = 10 }},
		{"inverted aspect", func(c *Config) { c.MinAspectRatio, c.MaxAspectRatio = 1.2, 0.8 }},
		{"zero aspect", func(c *Config) { c.MinAspectRatio = 0 }},
		{"negative inset", func(c *Config) { c.FinderInset = -1 }},
		{"inset larger than symbol", func(c *Config) { c.FinderInset = 6 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
