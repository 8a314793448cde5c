package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newIsolatedLoader(t *testing.T) *Loader {
	t.Helper()

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return NewLoaderWithViper(viper.New())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "matrixscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	require.NotNil(t, loader)
	assert.Same(t, viper.GetViper(), loader.GetViper())
}

func TestLoadWithNoConfigFile(t *testing.T) {
	loader := newIsolatedLoader(t)

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	assert.Empty(t, loader.GetConfigFileUsed())
}

func TestLoadWithValidYAMLFile(t *testing.T) {
	loader := newIsolatedLoader(t)
	path := writeConfig(t, `
log_level: debug
verbose: true
preprocess:
  method: fixed
  blur: false
  threshold: 100
locator:
  min_width: 40
  min_height: 40
decoder:
  normalize_ratio: 2
server:
  port: 9090
batch:
  workers: 8
  recursive: true
`)

	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "fixed", cfg.Preprocess.Method)
	assert.False(t, cfg.Preprocess.Blur)
	assert.Equal(t, 100, cfg.Preprocess.Threshold)
	assert.Equal(t, 40, cfg.Locator.MinWidth)
	assert.Equal(t, 150, cfg.Locator.MaxWidth, "unset keys keep defaults")
	assert.InDelta(t, 2.0, cfg.Decoder.NormalizeRatio, 0)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.Recursive)
	assert.Equal(t, path, loader.GetConfigFileUsed())
}

func TestLoadFromSearchPath(t *testing.T) {
	loader := newIsolatedLoader(t)
	require.NoError(t, os.WriteFile("matrixscan.yaml", []byte("log_level: warn\n"), 0o600))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadWithInvalidValues(t *testing.T) {
	loader := newIsolatedLoader(t)
	path := writeConfig(t, "server:\n  port: -1\n")

	_, err := loader.LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	cfg, err := NewLoaderWithViper(viper.New()).LoadWithFileWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Server.Port)
}

func TestLoadWithMissingFile(t *testing.T) {
	loader := newIsolatedLoader(t)

	_, err := loader.LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithMalformedFile(t *testing.T) {
	loader := newIsolatedLoader(t)
	path := writeConfig(t, "locator: [unclosed\n")

	_, err := loader.LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestEnvironmentOverrides(t *testing.T) {
	loader := newIsolatedLoader(t)
	t.Setenv("MATRIXSCAN_LOG_LEVEL", "error")
	t.Setenv("MATRIXSCAN_LOCATOR_MIN_WIDTH", "42")
	t.Setenv("MATRIXSCAN_PREPROCESS_BLUR", "false")
	t.Setenv("MATRIXSCAN_DECODER_ANALYZE_RATIO", "2.5")

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 42, cfg.Locator.MinWidth)
	assert.False(t, cfg.Preprocess.Blur)
	assert.InDelta(t, 2.5, cfg.Decoder.AnalyzeRatio, 0)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	loader := newIsolatedLoader(t)
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("MATRIXSCAN_SERVER_PORT", "9100")

	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestSetOverridesEverything(t *testing.T) {
	loader := newIsolatedLoader(t)
	_, err := loader.Load()
	require.NoError(t, err)

	loader.Set("output.format", "json")
	assert.Equal(t, "json", loader.Get("output.format"))

	cfg, err := loader.Unmarshal()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Contains(t, loader.GetResolvedConfig(), "locator")
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	data, err := os.ReadFile(path) //nolint:gosec // G304: test file in temp dir
	require.NoError(t, err)
	assert.Contains(t, string(data), "MATRIXSCAN_")

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)

	loaded, err := newIsolatedLoader(t).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *loaded)
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()

	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/xdg/matrixscan")
	assert.Equal(t, "/etc/matrixscan", paths[len(paths)-1])
}

func TestFlattenCoversEveryLeaf(t *testing.T) {
	keys := flatten(DefaultConfig())

	for _, key := range []string{
		"log_level", "verbose", "preprocess.method", "preprocess.block_size",
		"locator.finder_inset", "decoder.sample_row", "image.max_width",
		"output.debug_dir", "server.rate_limit", "batch.continue_on_error",
	} {
		assert.Contains(t, keys, key)
	}
	assert.NotContains(t, keys, "locator")
}
