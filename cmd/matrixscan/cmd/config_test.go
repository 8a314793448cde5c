package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigShow_Defaults(t *testing.T) {
	stdout, stderr, err := executeCommand(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "# config file:")

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestConfigShow_JSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "config", "show", "--format", "json")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, config.DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestConfigShow_InvalidFormat(t *testing.T) {
	_, _, err := executeCommand(t, "config", "show", "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format: toml")
}

func TestConfigShow_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, cfgPath, "locator:\n  min_width: 42\nserver:\n  port: 9999\n")

	stdout, stderr, err := executeCommand(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "# config file: "+cfgPath)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, 42, cfg.Locator.MinWidth)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestConfigShow_SearchPath(t *testing.T) {
	isolateEnvironment(t)
	writeFile(t, "matrixscan.yaml", "log_level: warn\n")

	stdout, stderr, err := runCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stderr, "# config file: ")
	assert.Contains(t, stdout, "log_level: warn")
}

func TestConfigShow_EnvOverride(t *testing.T) {
	t.Setenv("MATRIXSCAN_LOCATOR_MIN_WIDTH", "17")
	t.Setenv("MATRIXSCAN_OUTPUT_FORMAT", "csv")

	stdout, _, err := executeCommand(t, "config", "show")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, 17, cfg.Locator.MinWidth)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")

	stdout, _, err := executeCommand(t, "config", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "Configuration written to "+path+"\n", stdout)

	loaded, err := config.NewLoaderWithViper(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), *loaded)
}

func TestConfigInit_DefaultName(t *testing.T) {
	stdout, _, err := executeCommand(t, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "Configuration written to matrixscan.yaml\n", stdout)
	assert.FileExists(t, "matrixscan.yaml")
}

func TestConfigInit_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.yaml")
	writeFile(t, path, "log_level: debug\n")

	_, _, err := executeCommand(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(data))

	_, _, err = executeCommand(t, "config", "init", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "preprocess:")
}

func TestConfigPaths(t *testing.T) {
	stdout, _, err := executeCommand(t, "config", "paths")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, config.GetConfigSearchPaths(), lines)
	assert.Equal(t, ".", lines[0])
	assert.Equal(t, "/etc/matrixscan", lines[len(lines)-1])
}
