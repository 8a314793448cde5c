package cmd

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/matrixscan/internal/testutil"
	"github.com/MeKo-Tech/matrixscan/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// decodeFlags select the stage settings the synthetic fixtures are
// rendered for.
var decodeFlags = []string{"--method", "fixed", "--blur=false"}

// executeCommand runs the root command in-process with a clean flag and
// configuration state and returns what it wrote to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	isolateEnvironment(t)
	return runCommand(t, args...)
}

// runCommand is executeCommand in the current environment.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetCommandState(rootCmd)

	prevLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prevLogger) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolateEnvironment keeps config search paths away from the developer's
// machine.
func isolateEnvironment(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
}

func resetCommandState(root *cobra.Command) {
	viper.Reset()
	cfgFile = ""
	configLoader = nil

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		resetFlagSet(c.Flags())
		resetFlagSet(c.PersistentFlags())
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

func resetFlagSet(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

// writeFixtures renders the named sample fixtures as PNG files in dir and
// returns their paths in the given order.
func writeFixtures(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	byName := make(map[string]testutil.SymbolFixture)
	for _, f := range testutil.SampleFixtures() {
		byName[f.Name] = f
	}

	require.NoError(t, os.MkdirAll(dir, 0o750))
	paths := make([]string, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		require.True(t, ok, "unknown fixture %s", name)
		path := filepath.Join(dir, name+".png")
		require.NoError(t, utils.SaveImage(path, testutil.RenderSymbol(f.Symbol)))
		paths = append(paths, path)
	}
	return paths
}

func expectedValue(t *testing.T, name string) string {
	t.Helper()

	for _, f := range testutil.SampleFixtures() {
		if f.Name == name {
			return f.Expected
		}
	}
	t.Fatalf("unknown fixture %s", name)
	return ""
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
