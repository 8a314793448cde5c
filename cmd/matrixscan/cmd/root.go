package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/matrixscan/internal/config"
	"github.com/MeKo-Tech/matrixscan/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "matrixscan",
	Short: "Locate and decode numeric matrix symbols in images",
	Long: `matrixscan finds a square two-dimensional matrix symbol in a scanned
image and decodes its numeric payload.

The pipeline converts the image to grayscale, optionally blurs and binarizes
it, traces edge contours, validates the finder pattern of each candidate and
samples the module grid of the symbol that survives.

Examples:
  matrixscan image scan.tif
  matrixscan image *.png --format json
  matrixscan batch scans/ --recursive --workers 8
  matrixscan serve --port 8080`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Root().PersistentFlags(), rootFlagBindings); err != nil {
			return err
		}
		if err := initConfig(); err != nil {
			return err
		}
		setupLogging(cmd)
		return nil
	},
}

var rootFlagBindings = []flagBinding{
	{"verbose", "verbose"},
	{"log_level", "log-level"},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
// This allows tests to execute commands without calling os.Exit().
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $XDG_CONFIG_HOME/matrixscan, /etc/matrixscan)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate("matrixscan version {{.Version}}\n")
}

// initConfig reads in the config file and environment variables. It runs
// before every command so flags bound afterwards are picked up by GetConfig.
func initConfig() error {
	configLoader = config.NewLoader()
	if _, err := configLoader.LoadWithFileWithoutValidation(cfgFile); err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	return nil
}

// setupLogging installs the JSON logger. Logs go to stderr so decoded values
// on stdout stay machine readable.
func setupLogging(cmd *cobra.Command) {
	cfg, err := GetConfigLoader().Unmarshal()
	level := slog.LevelInfo
	if err == nil {
		level = parseLogLevel(cfg.LogLevel, cfg.Verbose)
	}

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func parseLogLevel(name string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConfig returns the merged configuration of defaults, config file,
// environment and the flags bound by the running command.
func GetConfig() (*config.Config, error) {
	cfg, err := GetConfigLoader().Unmarshal()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

type flagBinding struct {
	key  string
	flag string
}

// bindFlags binds flags to viper keys. Commands bind in their pre-run hook
// so that only the running command's flags back the shared keys.
func bindFlags(flags *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			return fmt.Errorf("unknown flag %s for key %s", b.flag, b.key)
		}
		if err := viper.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", b.flag, err)
		}
	}
	return nil
}
