package convert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/backmassage/gifbatch/internal/logging"
)

// fakeEngine replays a scripted event stream.
type fakeEngine struct {
	events   []Event
	startErr error
	block    bool // wait for ctx before emitting the terminal error
	got      []Invocation
}

func (f *fakeEngine) Start(ctx context.Context, inv Invocation) (<-chan Event, error) {
	f.got = append(f.got, inv)
	if f.startErr != nil {
		return nil, f.startErr
	}
	ch := make(chan Event)
	go func() {
		defer close(ch)
		for _, ev := range f.events {
			ch <- ev
		}
		if f.block {
			<-ctx.Done()
			ch <- Event{Kind: EventError, Err: errors.New("signal: killed")}
		}
	}()
	return ch, nil
}

type reasonErr struct{ r Reason }

func (e reasonErr) Error() string  { return string(e.r) }
func (e reasonErr) Reason() Reason { return e.r }

func newObserved() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewWithCore(core), logs
}

func messages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.AllUntimed() {
		out = append(out, e.Message)
	}
	return out
}

func TestConvertOne_Success(t *testing.T) {
	eng := &fakeEngine{events: []Event{
		{Kind: EventProgress, Percent: Percent(12.4)},
		{Kind: EventProgress, Percent: Percent(57.6)},
		{Kind: EventProgress},
		{Kind: EventEnd},
	}}
	log, logs := newObserved()
	var seen []Progress
	c := NewConverter(eng, log, WithProgressHook(func(p Progress) { seen = append(seen, p) }))

	err := c.ConvertOne(context.Background(), "/in/a.mp4", "/out/a.gif", Options{TargetWidth: 800, FrameRate: 30})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Converting: /in/a.mp4 -> /out/a.gif",
		"Processing... 12% done",
		"Processing... 58% done",
		"Processing... 0% done",
		"Converted: /out/a.gif",
	}, messages(logs))

	require.Len(t, seen, 3)
	assert.True(t, seen[0].Known)
	assert.False(t, seen[2].Known)

	require.Len(t, eng.got, 1)
	assert.Equal(t, Invocation{
		InputPath: "/in/a.mp4", OutputPath: "/out/a.gif",
		Width: 800, FrameRate: 30, Format: "gif",
	}, eng.got[0])
}

func TestConvertOne_EngineError(t *testing.T) {
	eng := &fakeEngine{events: []Event{
		{Kind: EventProgress, Percent: Percent(3)},
		{Kind: EventError, Err: reasonErr{ReasonInvalidData}},
	}}
	log, logs := newObserved()
	c := NewConverter(eng, log)

	err := c.ConvertOne(context.Background(), "/in/b.avi", "/out/b.gif", Options{})
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonInvalidData, ce.Reason)
	assert.Equal(t, "/in/b.avi", ce.InputPath)

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "Conversion error: /in/b.avi")
}

func TestConvertOne_StartError(t *testing.T) {
	eng := &fakeEngine{startErr: reasonErr{ReasonEncoderUnavailable}}
	c := NewConverter(eng, logging.NewNop())

	err := c.ConvertOne(context.Background(), "a.mp4", "a.gif", Options{})
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonEncoderUnavailable, ce.Reason)
}

func TestConvertOne_StreamClosedEarly(t *testing.T) {
	eng := &fakeEngine{events: []Event{{Kind: EventProgress}}}
	c := NewConverter(eng, logging.NewNop())

	err := c.ConvertOne(context.Background(), "a.mp4", "a.gif", Options{})
	assert.ErrorIs(t, err, ErrNoTerminalEvent)
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonIncomplete, ce.Reason)
}

func TestConvertOne_InvalidOptions(t *testing.T) {
	eng := &fakeEngine{}
	c := NewConverter(eng, logging.NewNop())

	err := c.ConvertOne(context.Background(), "a.mp4", "a.gif", Options{TargetWidth: -1})
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonInvalidOptions, ce.Reason)
	assert.Empty(t, eng.got, "engine must not start")
}

func TestConvertOne_Timeout(t *testing.T) {
	eng := &fakeEngine{block: true}
	c := NewConverter(eng, logging.NewNop(), WithTimeout(20*time.Millisecond))

	err := c.ConvertOne(context.Background(), "a.mp4", "a.gif", Options{})
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonTimeout, ce.Reason)
}

func TestConvertOne_Canceled(t *testing.T) {
	eng := &fakeEngine{block: true}
	c := NewConverter(eng, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	err := c.ConvertOne(ctx, "a.mp4", "a.gif", Options{})
	var ce *ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ReasonCanceled, ce.Reason)
}

func TestOptions(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.Error(t, Options{FrameRate: -1}.Validate())
	assert.Equal(t, "width=800 fps=30", Options{TargetWidth: 800, FrameRate: 30}.String())
	assert.Equal(t, "width=source fps=source", Options{}.String())
}

func TestEventKind(t *testing.T) {
	assert.False(t, EventProgress.Terminal())
	assert.True(t, EventEnd.Terminal())
	assert.True(t, EventError.Terminal())
	assert.Equal(t, "error", EventError.String())
}
