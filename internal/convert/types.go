package convert

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// OutputFormat is the engine format identifier for every conversion.
const OutputFormat = "gif"

// Options is the per-batch conversion record. Zero fields mean "engine
// default": no resize, source frame rate. Options is passed by value and
// never mutated.
type Options struct {
	TargetWidth int // Output width in pixels; height follows the aspect ratio.
	FrameRate   int // Output frames per second.
}

// Validate rejects negative values.
func (o Options) Validate() error {
	if o.TargetWidth < 0 {
		return fmt.Errorf("target width must be positive (got %d)", o.TargetWidth)
	}
	if o.FrameRate < 0 {
		return fmt.Errorf("frame rate must be positive (got %d)", o.FrameRate)
	}
	return nil
}

// String renders the options for log lines, e.g. "width=800 fps=30".
func (o Options) String() string {
	w, r := "source", "source"
	if o.TargetWidth > 0 {
		w = strconv.Itoa(o.TargetWidth)
	}
	if o.FrameRate > 0 {
		r = strconv.Itoa(o.FrameRate)
	}
	return "width=" + w + " fps=" + r
}

// Invocation is everything the engine needs for one file.
type Invocation struct {
	InputPath  string
	OutputPath string
	Width      int // 0 keeps the source width.
	FrameRate  int // 0 keeps the source rate.
	Format     string
}

// Invocation builds the engine invocation for one FileJob.
func (o Options) Invocation(inputPath, outputPath string) Invocation {
	return Invocation{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Width:      o.TargetWidth,
		FrameRate:  o.FrameRate,
		Format:     OutputFormat,
	}
}

// EventKind distinguishes progress events from the two terminal events.
type EventKind int

const (
	EventProgress EventKind = iota
	EventEnd
	EventError
)

// Terminal reports whether the event ends the stream.
func (k EventKind) Terminal() bool { return k == EventEnd || k == EventError }

func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one item of the engine's event stream.
type Event struct {
	Kind EventKind

	// Progress fields. Percent is nil when the engine cannot tell
	// (e.g. the input duration is unknown).
	Percent *float64
	Frame   int64
	OutTime time.Duration

	// Err is set on EventError.
	Err error
}

// Engine starts one conversion. The returned channel carries zero or more
// EventProgress events and then exactly one EventEnd or EventError, after
// which it is closed. Cancelling ctx stops the engine, which then reports
// EventError. An error from Start means nothing was started and no events
// will follow.
type Engine interface {
	Start(ctx context.Context, inv Invocation) (<-chan Event, error)
}

// Progress is handed to a progress hook for every progress event.
type Progress struct {
	InputPath string
	Percent   float64 // Rounded; 0 when the engine did not report one.
	Known     bool    // Whether the engine reported a percentage.
	Frame     int64
}

// Percent returns a pointer to p, for building progress events.
func Percent(p float64) *float64 { return &p }
