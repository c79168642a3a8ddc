package convert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/backmassage/gifbatch/internal/logging"
)

const tracerName = "github.com/backmassage/gifbatch/internal/convert"

// Converter runs one file at a time through an Engine. It is safe to reuse
// across files; it holds no per-file state.
type Converter struct {
	engine   Engine
	log      *logging.Logger
	timeout  time.Duration
	verbose  bool
	progress func(Progress)
	tracer   trace.Tracer
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout bounds each conversion. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) { c.timeout = d }
}

// WithProgressHook registers fn to observe every progress event.
func WithProgressHook(fn func(Progress)) Option {
	return func(c *Converter) { c.progress = fn }
}

// WithVerbose enables debug lines for frame counts.
func WithVerbose(v bool) Option {
	return func(c *Converter) { c.verbose = v }
}

// NewConverter returns a Converter driving engine and logging to log.
func NewConverter(engine Engine, log *logging.Logger, opts ...Option) *Converter {
	c := &Converter{
		engine: engine,
		log:    log,
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ConvertOne converts inputPath into outputPath and blocks until the engine
// reports a terminal event. It returns nil on success and a
// *ConversionError otherwise. Engine failures never escape as panics.
func (c *Converter) ConvertOne(ctx context.Context, inputPath, outputPath string, opts Options) (err error) {
	ctx, span := c.tracer.Start(ctx, "convert.file", trace.WithAttributes(
		attribute.String("gifbatch.input", inputPath),
		attribute.String("gifbatch.output", outputPath),
		attribute.Int("gifbatch.width", opts.TargetWidth),
		attribute.Int("gifbatch.fps", opts.FrameRate),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c.log.Info("Converting: %s -> %s", inputPath, outputPath)

	if verr := opts.Validate(); verr != nil {
		return c.fail(inputPath, outputPath, ReasonInvalidOptions, verr)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	events, serr := c.engine.Start(ctx, opts.Invocation(inputPath, outputPath))
	if serr != nil {
		return c.fail(inputPath, outputPath, classify(ctx, serr), fmt.Errorf("start engine: %w", serr))
	}

	for ev := range events {
		if !ev.Kind.Terminal() {
			c.reportProgress(inputPath, ev)
			continue
		}
		if ev.Kind == EventError {
			return c.fail(inputPath, outputPath, classify(ctx, ev.Err), ev.Err)
		}
		c.log.Success("Converted: %s", outputPath)
		return nil
	}
	return c.fail(inputPath, outputPath, ReasonIncomplete, ErrNoTerminalEvent)
}

// reportProgress logs the rounded percentage. An absent percentage logs as 0.
func (c *Converter) reportProgress(inputPath string, ev Event) {
	p := Progress{InputPath: inputPath, Frame: ev.Frame}
	if ev.Percent != nil {
		p.Percent = math.Round(*ev.Percent)
		p.Known = true
	}
	c.log.Info("Processing... %d%% done", int(p.Percent))
	c.log.Debug(c.verbose, "  frame=%d out_time=%s", ev.Frame, ev.OutTime)
	if c.progress != nil {
		c.progress(p)
	}
}

func (c *Converter) fail(in, out string, reason Reason, err error) error {
	if err == nil {
		err = errors.New("engine reported an error without details")
	}
	c.log.Error("Conversion error: %s: %v", in, err)
	return &ConversionError{InputPath: in, OutputPath: out, Reason: reason, Err: err}
}
