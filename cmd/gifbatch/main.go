// Command gifbatch converts every video in an input directory into an
// animated GIF in an output directory, one file at a time, using ffmpeg.
//
// It loads configuration (defaults, .env, environment, flags), validates
// it, and either runs system diagnostics (--check) or the batch.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/backmassage/gifbatch/internal/check"
	"github.com/backmassage/gifbatch/internal/config"
	"github.com/backmassage/gifbatch/internal/convert"
	"github.com/backmassage/gifbatch/internal/display"
	"github.com/backmassage/gifbatch/internal/ffmpeg"
	"github.com/backmassage/gifbatch/internal/ledger"
	"github.com/backmassage/gifbatch/internal/logging"
	"github.com/backmassage/gifbatch/internal/metrics"
	"github.com/backmassage/gifbatch/internal/pipeline"
	"github.com/backmassage/gifbatch/internal/storage"
	"github.com/backmassage/gifbatch/internal/tracing"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.LoadEnv(&cfg, ".env"); err != nil {
		fmt.Fprintf(os.Stderr, "gifbatch: %v\n", err)
		return 1
	}
	if err := config.ParseFlags(&cfg, version); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "gifbatch: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "gifbatch: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gifbatch: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner(os.Stdout, log.Color())

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	inputAbs, err := filepath.Abs(cfg.InputDir)
	if err != nil {
		log.Error("Cannot resolve input path: %s", cfg.InputDir)
		return 1
	}
	outputAbs, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		return 1
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		log.Warn("%v", err)
	}

	log.Info("=== gifbatch v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN: no conversions will run")
	}

	// A broken engine is not fatal here: every file then fails on its own
	// and the batch still reports them.
	if !cfg.DryRun {
		if err := check.CheckDeps(&cfg, log); err != nil {
			log.Warn("%v; conversions are expected to fail", err)
		}
	}

	// Phase 3: Signal handling. The current conversion is killed and the
	// batch stops before the next file.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go watchSignals(ctx, sigCh, cancel, log)

	// Phase 4: Optional side channels. None of them is allowed to stop the batch.
	if cfg.TracingEndpoint != "" {
		tp, err := tracing.InitTracer(ctx, cfg.TracingEndpoint, version)
		if err != nil {
			log.Warn("Tracing disabled: %v", err)
		} else {
			defer func() {
				if err := tracing.Shutdown(tp, shutdownTimeout); err != nil {
					log.Warn("Tracing shutdown: %v", err)
				}
			}()
		}
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.StartMetricsServer(cfg.MetricsAddr, log.Zap())
		defer func() {
			if err := metrics.Shutdown(srv, shutdownTimeout); err != nil {
				log.Warn("Metrics server shutdown: %v", err)
			}
		}()
	}

	var runnerOpts []pipeline.RunnerOption
	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			log.Warn("Ledger disabled: %v", err)
		} else {
			defer store.Close()
			runnerOpts = append(runnerOpts, pipeline.WithRecorder(store))
		}
	}
	if cfg.Upload.Enabled() && !cfg.DryRun {
		if up := newUploader(ctx, &cfg, log); up != nil {
			runnerOpts = append(runnerOpts, pipeline.WithPublisher(up))
		}
	}

	// Phase 5: Run the batch.
	engine := ffmpeg.NewEngine(cfg.FFmpegBin, cfg.FFprobeBin, log)
	engine.Verbose = cfg.Verbose
	conv := convert.NewConverter(engine, log,
		convert.WithTimeout(cfg.Timeout),
		convert.WithVerbose(cfg.Verbose),
		convert.WithProgressHook(func(p convert.Progress) {
			metrics.CurrentProgress.Set(p.Percent)
		}),
	)
	runner := pipeline.NewRunner(&cfg, log, conv, runnerOpts...)

	res, err := runner.ConvertAll(ctx, convert.Options{TargetWidth: cfg.Width, FrameRate: cfg.FPS})
	writeMetricsFile(&cfg, log)
	if err != nil {
		log.Error("Batch failed: %v", err)
		return 1
	}
	log.Zap().Debug("batch result", zap.String("run_id", res.RunID),
		zap.Int("converted", res.Succeeded()), zap.Int("failed", res.Failed()))
	return 0
}

// watchSignals cancels the batch on the first signal. Cancelling kills the
// running ffmpeg, so the current file fails as canceled.
func watchSignals(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc, log *logging.Logger) {
	select {
	case <-sigCh:
		log.Warn("Received interrupt, cancelling the current file and stopping")
		cancel()
	case <-ctx.Done():
	}
}

func newUploader(ctx context.Context, cfg *config.Config, log *logging.Logger) *storage.Uploader {
	up, err := storage.NewUploader(cfg.Upload)
	if err != nil {
		log.Warn("Upload disabled: %v", err)
		return nil
	}
	if err := up.EnsureBucket(ctx); err != nil {
		log.Warn("Upload disabled: %v", err)
		return nil
	}
	log.Info("Uploading to %s/%s", cfg.Upload.Endpoint, cfg.Upload.Bucket)
	return up
}

func writeMetricsFile(cfg *config.Config, log *logging.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn("Metrics file: %v", err)
	}
}
