package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/gifbatch/internal/convert"
	"github.com/backmassage/gifbatch/internal/logging"
	"github.com/backmassage/gifbatch/internal/probe"
)

// stderrTailLines is how many non-progress stderr lines are kept for
// error classification and messages.
const stderrTailLines = 20

// Engine runs ffmpeg as a [convert.Engine].
type Engine struct {
	FFmpegBin  string
	FFprobeBin string // Empty disables the duration lookup (percent stays unknown).
	Verbose    bool

	log *logging.Logger
}

var _ convert.Engine = (*Engine)(nil)

// NewEngine returns an Engine using the given binaries.
func NewEngine(ffmpegBin, ffprobeBin string, log *logging.Logger) *Engine {
	return &Engine{FFmpegBin: ffmpegBin, FFprobeBin: ffprobeBin, log: log}
}

// Start launches ffmpeg for inv. The process is killed when ctx is done.
// On failure the partial output file is removed before the error event is
// sent.
func (e *Engine) Start(ctx context.Context, inv convert.Invocation) (<-chan convert.Event, error) {
	total := e.duration(ctx, inv.InputPath)

	args := Build(e.FFmpegBin, inv)
	e.logger().Debug(e.Verbose, "  %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ExecError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &ExecError{Err: err}
	}

	events := make(chan convert.Event, 8)
	go func() {
		defer close(events)

		tail := newTail(stderrTailLines)
		var parser ProgressParser

		sc := bufio.NewScanner(stderr)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			if !IsProgressLine(line) {
				tail.add(line)
				continue
			}
			block, ok := parser.Feed(line)
			if !ok {
				continue
			}
			events <- convert.Event{
				Kind:    convert.EventProgress,
				Percent: block.Percent(total),
				Frame:   block.Frame,
				OutTime: block.OutTime,
			}
		}

		if werr := cmd.Wait(); werr != nil {
			if ctx.Err() != nil {
				werr = errors.Join(ctx.Err(), werr)
			}
			_ = os.Remove(inv.OutputPath)
			events <- convert.Event{Kind: convert.EventError, Err: &ExecError{Err: werr, Stderr: tail.String()}}
			return
		}
		events <- convert.Event{Kind: convert.EventEnd}
	}()
	return events, nil
}

// duration looks up the input duration with ffprobe. Failures are not
// errors: ffmpeg will report its own problem with the input.
func (e *Engine) duration(ctx context.Context, path string) time.Duration {
	if e.FFprobeBin == "" {
		return 0
	}
	res, err := probe.Probe(ctx, e.FFprobeBin, path)
	if err != nil {
		e.logger().Debug(e.Verbose, "  duration unknown for %s: %v", path, err)
		return 0
	}
	d := res.Duration()
	e.logger().Debug(e.Verbose, "  source: %s, %s, %s", res.Format.FormatName, res.Resolution(), d)
	return d
}

func (e *Engine) logger() *logging.Logger {
	if e.log == nil {
		return logging.NewNop()
	}
	return e.log
}

// tail keeps the last n lines written to it.
type tail struct {
	lines []string
	n     int
}

func newTail(n int) *tail { return &tail{n: n} }

func (t *tail) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[len(t.lines)-t.n:]
	}
}

func (t *tail) String() string { return strings.Join(t.lines, "\n") }
