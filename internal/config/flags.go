package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into conversion, behavior, engine, observability, display and utility.
// Negated flags (e.g. --no-color) are applied after Parse so earlier values hold unless set.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrHelp is returned by ParseArgs when --help or --version was handled.
// Callers should exit with status 0.
var ErrHelp = errors.New("help requested")

// ParseFlags parses os.Args into cfg. See [ParseArgs].
func ParseFlags(cfg *Config, version string) error {
	return ParseArgs(cfg, version, os.Args[1:], os.Stdout, os.Stderr)
}

// ParseArgs parses args into cfg. Flags override whatever cfg already holds
// (defaults and environment). Zero or two positional arguments are accepted:
// with none the configured directories are kept. On --help or --version it
// prints and returns [ErrHelp].
func ParseArgs(cfg *Config, version string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("gifbatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var negated negatedFlags

	defineConversionFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineEngineFlags(fs, cfg)
	defineObservabilityFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stderr, version)
			return ErrHelp
		}
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(stderr, version)
		return ErrHelp
	}
	if negated.showVersion {
		fmt.Fprintln(stdout, "gifbatch v"+version)
		return ErrHelp
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineConversionFlags registers -w/--width and -r/--fps.
func defineConversionFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Output width in pixels (0 = source width)")
	fs.IntVar(&cfg.Width, "w", cfg.Width, "Same as --width")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "Output frame rate (0 = source rate)")
	fs.IntVar(&cfg.FPS, "r", cfg.FPS, "Same as --fps")
}

// defineBehaviorFlags registers --collision, --timeout and -d/--dry-run.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var(&collisionValue{&cfg.Collision}, "collision", "Output name collisions: overwrite | error | suffix")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-file conversion limit (0 = none)")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "List planned conversions without running ffmpeg")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
}

// defineEngineFlags registers --ffmpeg and --ffprobe.
func defineEngineFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegBin, "ffmpeg", cfg.FFmpegBin, "ffmpeg binary")
	fs.StringVar(&cfg.FFprobeBin, "ffprobe", cfg.FFprobeBin, "ffprobe binary (empty disables percent progress)")
}

// defineObservabilityFlags registers the ledger, metrics, tracing and upload flags.
func defineObservabilityFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.LedgerPath, "ledger", cfg.LedgerPath, "Record per-file outcomes in this pebble directory")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address during the run")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this textfile when done")
	fs.StringVar(&cfg.TracingEndpoint, "otlp-endpoint", cfg.TracingEndpoint, "Export traces to this OTLP/HTTP endpoint")
	fs.StringVar(&cfg.Upload.Endpoint, "upload-endpoint", cfg.Upload.Endpoint, "Upload GIFs to this S3-compatible endpoint")
	fs.StringVar(&cfg.Upload.Bucket, "upload-bucket", cfg.Upload.Bucket, "Upload bucket")
	fs.StringVar(&cfg.Upload.Prefix, "upload-prefix", cfg.Upload.Prefix, "Upload object key prefix")
	fs.BoolVar(&cfg.Upload.UseSSL, "upload-ssl", cfg.Upload.UseSSL, "Use TLS for uploads")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
}

// defineUtilityFlags registers --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDir and OutputDir when exactly two positional
// args are given. None keeps the configured directories; any other count is an error.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch len(args) {
	case 0:
		return nil
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
		return nil
	default:
		return fmt.Errorf("need no positional args or exactly input_dir and output_dir (got %d)", len(args))
	}
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "gifbatch v" + version + " - batch video to GIF converter"},
		{"", ""},
		{"  gifbatch [OPTIONS] [<input_dir> <output_dir>]", ""},
		{"", ""},
		{"Conversion", ""},
		{"  -w, --width <px>", "Output width, height keeps aspect (default: 800)"},
		{"  -r, --fps <n>", "Output frame rate (default: 30)"},
		{"", ""},
		{"Behavior", ""},
		{"  --collision <policy>", "overwrite | error | suffix (default: overwrite)"},
		{"  --timeout <duration>", "Per-file limit, e.g. 5m (default: none)"},
		{"  -d, --dry-run", "List planned conversions only"},
		{"  --ffmpeg <path>", "ffmpeg binary (default: ffmpeg)"},
		{"  --ffprobe <path>", "ffprobe binary (default: ffprobe)"},
		{"", ""},
		{"Observability", ""},
		{"  --ledger <dir>", "Record outcomes in a pebble store"},
		{"  --metrics-addr <addr>", "Serve /metrics during the run"},
		{"  --metrics-file <path>", "Write metrics textfile when done"},
		{"  --otlp-endpoint <url>", "Export traces via OTLP/HTTP"},
		{"  --upload-endpoint <host>", "Upload GIFs to S3-compatible storage"},
		{"  --upload-bucket <name>", "Upload bucket"},
		{"  --upload-prefix <key>", "Upload key prefix"},
		{"  --upload-ssl", "Use TLS for uploads"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, ffprobe, gif encoder)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"", "Every option can also be set as " + EnvPrefix + "<NAME> in the environment or a .env file."},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so CollisionPolicy can be used with flag.Var.

type collisionValue struct{ p *CollisionPolicy }

func (c *collisionValue) String() string {
	if c.p == nil {
		return ""
	}
	return string(*c.p)
}

func (c *collisionValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "overwrite":
		*c.p = CollisionOverwrite
	case "error":
		*c.p = CollisionError
	case "suffix":
		*c.p = CollisionSuffix
	default:
		return fmt.Errorf("invalid collision policy %q (use 'overwrite', 'error' or 'suffix')", s)
	}
	return nil
}
