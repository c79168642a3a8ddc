// Package config holds runtime configuration: compiled-in defaults, .env and
// environment overrides, CLI flag parsing, and validation. The defaults
// are ./source -> ./output at 800px, 30 fps.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// CollisionPolicy decides what happens when two inputs derive the same
// output path (e.g. clip.mp4 and clip.mov both map to clip.gif).
type CollisionPolicy string

const (
	CollisionOverwrite CollisionPolicy = "overwrite" // Later file replaces the earlier output (default).
	CollisionError     CollisionPolicy = "error"     // Later file fails; earlier output is kept.
	CollisionSuffix    CollisionPolicy = "suffix"    // Later file is written as "<name> - dupN.gif".
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Upload describes the optional S3-compatible sink that receives every
// successfully converted file. The sink is disabled while Endpoint is empty.
type Upload struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET"`
	Prefix    string `env:"PREFIX"`
	UseSSL    bool   `env:"USE_SSL"`
}

// Enabled reports whether an upload endpoint has been configured.
func (u Upload) Enabled() bool { return u.Endpoint != "" }

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then [LoadEnv], then [ParseFlags], before being passed (by pointer) to the
// packages that need it.
type Config struct {
	// Paths (positional args or GIFBATCH_INPUT_DIR / GIFBATCH_OUTPUT_DIR).
	InputDir  string `env:"INPUT_DIR"`
	OutputDir string `env:"OUTPUT_DIR"`

	// Conversion options. Zero means "engine default".
	Width int `env:"WIDTH"` // Default: 800. Height follows the aspect ratio.
	FPS   int `env:"FPS"`   // Default: 30.

	// Behavior.
	Collision CollisionPolicy `env:"COLLISION"` // Default: "overwrite".
	Timeout   time.Duration   `env:"TIMEOUT"`   // Per-file limit. Default: 0 (none).
	DryRun    bool            `env:"DRY_RUN"`

	// Engine binaries.
	FFmpegBin  string `env:"FFMPEG"`  // Default: "ffmpeg".
	FFprobeBin string `env:"FFPROBE"` // Default: "ffprobe".

	// Display and logging.
	Verbose   bool      `env:"VERBOSE"`
	ColorMode ColorMode `env:"COLOR"` // Default: "auto".
	LogFile   string    `env:"LOG_FILE"`
	CheckOnly bool

	// Observability and sinks (all optional).
	LedgerPath      string `env:"LEDGER"`
	MetricsAddr     string `env:"METRICS_ADDR"`
	MetricsFile     string `env:"METRICS_FILE"`
	TracingEndpoint string `env:"OTLP_ENDPOINT"`
	Upload          Upload `envPrefix:"UPLOAD_"`
}

// DefaultConfig returns a Config holding the compiled-in defaults.
// Used as the base before env and flag overrides.
func DefaultConfig() Config {
	return Config{
		InputDir:   "./source",
		OutputDir:  "./output",
		Width:      800,
		FPS:        30,
		Collision:  CollisionOverwrite,
		FFmpegBin:  "ffmpeg",
		FFprobeBin: "ffprobe",
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly mode
// it also requires non-empty input and output directories.
func (c *Config) Validate() error {
	switch c.Collision {
	case CollisionOverwrite, CollisionError, CollisionSuffix:
		// valid
	default:
		return fmt.Errorf("invalid collision policy %q (use 'overwrite', 'error' or 'suffix')", c.Collision)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Width < 0 {
		return fmt.Errorf("width must not be negative (got %d)", c.Width)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must not be negative (got %d)", c.FPS)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative (got %s)", c.Timeout)
	}
	if c.FFmpegBin == "" {
		return errors.New("ffmpeg binary must not be empty")
	}

	if c.Upload.Enabled() && c.Upload.Bucket == "" {
		return errors.New("upload endpoint set but no bucket given")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("input and output directories must not be empty")
	}
	return nil
}

// ValidatePaths reports an output directory equal to the input directory,
// where generated files would be mixed with the sources. The batch only
// warns about it: a .gif is never picked up as input. Both arguments must be
// absolute paths. Nesting the output inside the input is fine.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	if filepath.Clean(inputAbs) == filepath.Clean(outputAbs) {
		return errors.New("output directory must differ from input directory")
	}
	return nil
}
