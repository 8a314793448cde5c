//nolint:lll
package config

// Config represents the complete configuration for the matrixscan application.
// It includes settings for all commands (image, batch, serve) and supports
// loading from configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline stages
	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Locator    LocatorConfig    `mapstructure:"locator" yaml:"locator" json:"locator"`
	Decoder    DecoderConfig    `mapstructure:"decoder" yaml:"decoder" json:"decoder"`
	Image      ImageConfig      `mapstructure:"image" yaml:"image" json:"image"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// PreprocessConfig controls blur and binarization.
type PreprocessConfig struct {
	Blur      bool   `mapstructure:"blur" yaml:"blur" json:"blur"`
	Method    string `mapstructure:"method" yaml:"method" json:"method"`
	BlockSize int    `mapstructure:"block_size" yaml:"block_size" json:"block_size"`
	C         int    `mapstructure:"c" yaml:"c" json:"c"`
	Threshold int    `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
}

// LocatorConfig contains symbol location thresholds.
type LocatorConfig struct {
	MinContourArea int     `mapstructure:"min_contour_area" yaml:"min_contour_area" json:"min_contour_area"`
	MinWidth       int     `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MaxWidth       int     `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	MinHeight      int     `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
	MaxHeight      int     `mapstructure:"max_height" yaml:"max_height" json:"max_height"`
	MinAspectRatio float64 `mapstructure:"min_aspect_ratio" yaml:"min_aspect_ratio" json:"min_aspect_ratio"`
	MaxAspectRatio float64 `mapstructure:"max_aspect_ratio" yaml:"max_aspect_ratio" json:"max_aspect_ratio"`
	MinSymbolSize  int     `mapstructure:"min_symbol_size" yaml:"min_symbol_size" json:"min_symbol_size"`
	FinderInset    int     `mapstructure:"finder_inset" yaml:"finder_inset" json:"finder_inset"`
	DarkThreshold  int     `mapstructure:"dark_threshold" yaml:"dark_threshold" json:"dark_threshold"`
}

// DecoderConfig contains module sampling settings.
type DecoderConfig struct {
	DarkLevel      int     `mapstructure:"dark_level" yaml:"dark_level" json:"dark_level"`
	NormalizeRatio float64 `mapstructure:"normalize_ratio" yaml:"normalize_ratio" json:"normalize_ratio"`
	AnalyzeRatio   float64 `mapstructure:"analyze_ratio" yaml:"analyze_ratio" json:"analyze_ratio"`
	SampleRow      int     `mapstructure:"sample_row" yaml:"sample_row" json:"sample_row"`
}

// ImageConfig bounds accepted input dimensions.
type ImageConfig struct {
	MaxWidth  int `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	MaxHeight int `mapstructure:"max_height" yaml:"max_height" json:"max_height"`
	MinWidth  int `mapstructure:"min_width" yaml:"min_width" json:"min_width"`
	MinHeight int `mapstructure:"min_height" yaml:"min_height" json:"min_height"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format          string `mapstructure:"format" yaml:"format" json:"format"`
	File            string `mapstructure:"file" yaml:"file" json:"file"`
	DebugDir        string `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
	OverlayDir      string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	OverlayBoxColor string `mapstructure:"overlay_box_color" yaml:"overlay_box_color" json:"overlay_box_color"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       int    `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int  `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}
