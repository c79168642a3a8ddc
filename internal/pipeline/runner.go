package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/backmassage/gifbatch/internal/config"
	"github.com/backmassage/gifbatch/internal/convert"
	"github.com/backmassage/gifbatch/internal/display"
	"github.com/backmassage/gifbatch/internal/logging"
	"github.com/backmassage/gifbatch/internal/metrics"
	"github.com/backmassage/gifbatch/internal/naming"
)

const tracerName = "github.com/backmassage/gifbatch/internal/pipeline"

// FileConverter converts one file. *convert.Converter implements it.
type FileConverter interface {
	ConvertOne(ctx context.Context, inputPath, outputPath string, opts convert.Options) error
}

// Recorder persists every final FileOutcome (the run ledger).
type Recorder interface {
	RecordOutcome(runID string, o FileOutcome) error
}

// Publisher ships a produced GIF somewhere else and returns its key.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

// Runner drives one batch at a time over the configured directories.
type Runner struct {
	cfg       *config.Config
	log       *logging.Logger
	conv      FileConverter
	recorder  Recorder
	publisher Publisher
	fixedID   string
	runID     string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder records every outcome in rec.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithPublisher uploads every converted GIF through p.
func WithPublisher(p Publisher) RunnerOption {
	return func(r *Runner) { r.publisher = p }
}

// WithRunID fixes the run ID of every batch instead of generating a UUIDv7
// per ConvertAll.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) { r.fixedID = id }
}

// NewRunner returns a Runner for cfg's directories and policies.
func NewRunner(cfg *config.Config, log *logging.Logger, conv FileConverter, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg, log: log, conv: conv}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunID returns the ID of the current or most recent batch. Empty before
// the first ConvertAll.
func (r *Runner) RunID() string { return r.runID }

// ConvertAll runs the batch: ensure directories, list, then convert each
// recognized file in listing order, one at a time. Per-file failures are
// logged and recorded in the result; only directory failures are returned
// as errors. A cancelled ctx stops the batch between files.
func (r *Runner) ConvertAll(ctx context.Context, opts convert.Options) (res *BatchResult, err error) {
	r.runID = r.fixedID
	if r.runID == "" {
		r.runID = newRunID()
	}
	res = &BatchResult{RunID: r.runID, Started: time.Now()}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.ConvertAll", trace.WithAttributes(
		attribute.String("gifbatch.run_id", res.RunID),
		attribute.String("gifbatch.input_dir", r.cfg.InputDir),
		attribute.String("gifbatch.output_dir", r.cfg.OutputDir),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := EnsureDirectories(r.log, r.cfg.InputDir, r.cfg.OutputDir); err != nil {
		return res, err
	}

	files, err := Discover(r.cfg.InputDir)
	if err != nil {
		return res, err
	}
	res.Considered = len(files)
	metrics.BatchFiles.Set(float64(len(files)))
	span.SetAttributes(attribute.Int("gifbatch.files", len(files)))

	if len(files) == 0 {
		r.log.Info("No video files found in %s, nothing to do", r.cfg.InputDir)
		res.Elapsed = time.Since(res.Started)
		return res, nil
	}

	r.log.Info("Found %d video files to convert (%s)", len(files), opts)
	r.log.Debug(r.cfg.Verbose, "Run ID: %s", res.RunID)

	resolver := naming.NewCollisionResolver(r.cfg.Collision)
	for i, path := range files {
		if ctx.Err() != nil {
			r.log.Warn("Interrupted, %d of %d files not attempted", len(files)-i, len(files))
			res.Interrupted = true
			break
		}

		job := FileJob{
			Seq:    i + 1,
			Input:  path,
			Output: naming.DeriveOutputPath(path, r.cfg.OutputDir, convert.OutputFormat),
		}
		outcome := r.processFile(ctx, job, len(files), resolver, opts)
		r.finishFile(ctx, res.RunID, &outcome)
		res.Outcomes = append(res.Outcomes, outcome)
	}

	res.Elapsed = time.Since(res.Started)
	r.logSummary(res)
	return res, nil
}

// processFile runs one FileJob through collision handling and the converter.
func (r *Runner) processFile(ctx context.Context, job FileJob, total int, resolver *naming.CollisionResolver, opts convert.Options) FileOutcome {
	out := FileOutcome{FileJob: job}
	basename := filepath.Base(job.Input)
	r.log.Info("[%d/%d] %s", job.Seq, total, basename)

	requested := job.Output
	resolved, err := resolver.Resolve(job.Input, requested)
	if err != nil {
		r.log.Error("Failed: %s: %v", basename, err)
		out.Status = StatusFailed
		out.Err = err
		return out
	}
	if resolved != requested {
		owner, _ := resolver.Owner(requested)
		r.log.Warn("  %s is taken by %s, writing %s", filepath.Base(requested), filepath.Base(owner), filepath.Base(resolved))
	}
	out.Output = resolved

	if r.cfg.DryRun {
		r.log.Success("[DRY] Would convert %s -> %s", job.Input, out.Output)
		out.Status = StatusPlanned
		return out
	}

	start := time.Now()
	err = r.conv.ConvertOne(ctx, job.Input, out.Output, opts)
	out.Elapsed = time.Since(start)
	if err != nil {
		r.log.Error("Failed: %s: %v", basename, err)
		out.Status = StatusFailed
		out.Err = err
		return out
	}

	out.Status = StatusConverted
	if fi, serr := os.Stat(out.Output); serr == nil {
		out.OutputBytes = fi.Size()
	}
	r.log.Debug(r.cfg.Verbose, "  %s in %s (%s)", filepath.Base(out.Output),
		display.FormatElapsed(out.Elapsed), display.FormatBytes(out.OutputBytes))
	return out
}

// finishFile feeds one final outcome to the side channels: upload, metrics,
// ledger. None of them can change the outcome's status.
func (r *Runner) finishFile(ctx context.Context, runID string, o *FileOutcome) {
	log := r.log.With(zap.String("run_id", runID), zap.Int("seq", o.Seq))
	if o.Status == StatusConverted && r.publisher != nil && ctx.Err() == nil {
		key, err := r.publisher.Publish(ctx, o.Output)
		if err != nil {
			log.Warn("  Upload failed for %s: %v", filepath.Base(o.Output), err)
			metrics.UploadsTotal.WithLabelValues("failed").Inc()
		} else {
			r.log.Info("  Uploaded: %s", key)
			o.UploadKey = key
			metrics.UploadsTotal.WithLabelValues("ok").Inc()
		}
	}

	metrics.ConversionsTotal.WithLabelValues(string(o.Status)).Inc()
	if o.Status == StatusConverted {
		metrics.ConversionDuration.Observe(o.Elapsed.Seconds())
		metrics.OutputBytesTotal.Add(float64(o.OutputBytes))
	}

	if r.recorder != nil {
		if err := r.recorder.RecordOutcome(runID, *o); err != nil {
			log.Warn("  Ledger write failed for %s: %v", filepath.Base(o.Input), err)
		}
	}
}

func (r *Runner) logSummary(res *BatchResult) {
	r.log.Info("==============================")
	if r.cfg.DryRun {
		r.log.Info("Dry run: %d conversions planned", res.Planned())
	} else {
		r.log.Info("Done: %d converted, %d failed", res.Succeeded(), res.Failed())
	}
	r.log.Info("Summary report:")
	r.log.Info("  Total files processed: %d of %d", res.Attempted(), res.Considered)
	if !r.cfg.DryRun {
		r.log.Info("  Total output size: %s", display.FormatBytes(res.OutputBytes()))
	}
	r.log.Info("  Elapsed: %s", display.FormatElapsed(res.Elapsed))
	for _, o := range res.Outcomes {
		if o.Status == StatusFailed {
			r.log.Warn("  Failed: %s", filepath.Base(o.Input))
		}
	}
	if res.Failed() == 0 && !res.Interrupted {
		r.log.Success("All conversions finished")
	} else {
		r.log.Info("Conversions finished")
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
