package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/matrixscan/internal/preprocess"
)

// testConfig binarizes with a fixed threshold and no blur. The adaptive
// default hollows out solid finder bars wider than its block.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Preprocess.Method = preprocess.MethodFixed
	cfg.Preprocess.Blur = false
	return cfg
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()

	e, err := NewBuilder().WithConfig(testConfig()).Build()
	require.NoError(t, err)
	return e
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, preprocess.MethodAdaptive, cfg.Preprocess.Method)
	assert.True(t, cfg.Preprocess.Blur)
	assert.Equal(t, 50, cfg.Locator.MinWidth)
	assert.Equal(t, 150, cfg.Locator.MaxWidth)
	assert.Empty(t, cfg.DebugDir)
}

func TestBuilderOptions(t *testing.T) {
	b := NewBuilder().
		WithBinarization(preprocess.MethodFixed, false).
		WithSizeRange(40, 200).
		WithDebugDir("/tmp/debug")

	cfg := b.Config()
	assert.Equal(t, preprocess.MethodFixed, cfg.Preprocess.Method)
	assert.False(t, cfg.Preprocess.Blur)
	assert.Equal(t, 40, cfg.Locator.MinWidth)
	assert.Equal(t, 40, cfg.Locator.MinHeight)
	assert.Equal(t, 200, cfg.Locator.MaxWidth)
	assert.Equal(t, 200, cfg.Locator.MaxHeight)
	assert.Equal(t, "/tmp/debug", cfg.DebugDir)

	e, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, cfg, e.Config())
}

func TestBuilderSizeRangeKeepsBoundsForZero(t *testing.T) {
	cfg := NewBuilder().WithSizeRange(0, 0).Config()
	assert.Equal(t, DefaultConfig().Locator, cfg.Locator)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	_, err := NewBuilder().WithSizeRange(100, 60).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locator")

	cfg := DefaultConfig()
	cfg.Decoder.SampleRow = -1
	cfg.Preprocess.BlockSize = 4
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder")
	assert.Contains(t, err.Error(), "preprocess")
}
