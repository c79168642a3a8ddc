package ffmpeg

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/gifbatch/internal/convert"
)

func TestBuild(t *testing.T) {
	inv := convert.Options{TargetWidth: 800, FrameRate: 30}.Invocation("/in/a b.mp4", "/out/a b.gif")
	assert.Equal(t, []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-i", "/in/a b.mp4",
		"-vf", "scale=800:-2,fps=30",
		"-f", "gif", "-progress", "pipe:2", "-nostats",
		"/out/a b.gif",
	}, Build("ffmpeg", inv))
}

func TestBuild_EngineDefaults(t *testing.T) {
	args := Build("/usr/bin/ffmpeg", convert.Invocation{InputPath: "a.mov", OutputPath: "a.gif"})
	assert.Equal(t, "/usr/bin/ffmpeg", args[0])
	assert.NotContains(t, args, "-vf")
	assert.Contains(t, strings.Join(args, " "), "-f gif")
}

func TestVideoFilters(t *testing.T) {
	tests := []struct {
		name  string
		width int
		fps   int
		want  string
	}{
		{"both", 480, 12, "scale=480:-2,fps=12"},
		{"width only", 320, 0, "scale=320:-2"},
		{"fps only", 0, 10, "fps=10"},
		{"neither", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoFilters(convert.Invocation{Width: tt.width, FrameRate: tt.fps}))
		})
	}
}

func TestProgressParser(t *testing.T) {
	var p ProgressParser
	lines := []string{
		"frame=15", "fps=0.0", "out_time_us=500000", "out_time=00:00:00.500000",
		"speed=1.0x", "progress=continue",
		"frame=30", "out_time_us=N/A", "progress=continue",
		"frame=60", "out_time_us=2000000", "progress=end",
	}
	var blocks []ProgressBlock
	for _, l := range lines {
		if b, ok := p.Feed(l); ok {
			blocks = append(blocks, b)
		}
	}
	require.Len(t, blocks, 3)

	assert.Equal(t, int64(15), blocks[0].Frame)
	assert.Equal(t, 500*time.Millisecond, blocks[0].OutTime)
	require.NotNil(t, blocks[0].Percent(2*time.Second))
	assert.InDelta(t, 25.0, *blocks[0].Percent(2*time.Second), 0.001)
	assert.Nil(t, blocks[0].Percent(0), "unknown total")

	// N/A keeps the previous position.
	assert.Equal(t, int64(30), blocks[1].Frame)
	assert.Equal(t, 500*time.Millisecond, blocks[1].OutTime)

	assert.True(t, blocks[2].Done)
	assert.InDelta(t, 100.0, *blocks[2].Percent(0), 0.001)
}

func TestProgressBlock_PercentClamped(t *testing.T) {
	b := ProgressBlock{OutTime: 3 * time.Second, known: true}
	assert.InDelta(t, 100.0, *b.Percent(2*time.Second), 0.001)
	assert.Nil(t, ProgressBlock{}.Percent(time.Second))
}

func TestIsProgressLine(t *testing.T) {
	assert.True(t, IsProgressLine("out_time_us=12"))
	assert.True(t, IsProgressLine("stream_0_0_q=-0.0"))
	assert.False(t, IsProgressLine("[gif @ 0x55] some warning key=value"))
	assert.False(t, IsProgressLine("clip.mp4: Invalid data found when processing input"))
	assert.False(t, IsProgressLine("=oops"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		stderr string
		want   convert.Reason
	}{
		{"bad.mp4: Invalid data found when processing input", convert.ReasonInvalidData},
		{"[mov,mp4,m4a @ 0x1] moov atom not found", convert.ReasonInvalidData},
		{"gone.mp4: No such file or directory", convert.ReasonMissingInput},
		{"/out/a.gif: Permission denied", convert.ReasonPermission},
		{"Unknown encoder 'gif'", convert.ReasonEncoderUnavailable},
		{"Requested output format 'gif' is not a suitable output format", convert.ReasonEncoderUnavailable},
		{"something unexpected", convert.ReasonUnknown},
		{"", convert.ReasonUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.want)+"/"+tt.stderr, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stderr))
		})
	}
}

func TestExecError(t *testing.T) {
	e := &ExecError{Err: errors.New("exit status 1"), Stderr: "line one\nbad.mp4: Invalid data found when processing input\n"}
	assert.Equal(t, "ffmpeg: exit status 1: bad.mp4: Invalid data found when processing input", e.Error())
	assert.Equal(t, convert.ReasonInvalidData, e.Reason())

	notFound := &ExecError{Err: &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}}
	assert.Equal(t, convert.ReasonEncoderUnavailable, notFound.Reason())
	assert.ErrorIs(t, notFound, exec.ErrNotFound)
}

func TestTail(t *testing.T) {
	tl := newTail(2)
	tl.add("a")
	tl.add("  ")
	tl.add("b")
	tl.add("c")
	assert.Equal(t, "b\nc", tl.String())
}

func TestEngineStart_BinaryMissing(t *testing.T) {
	tests := []struct {
		name string
		bin  string
	}{
		{"absolute path", "/nonexistent/ffmpeg-binary"},
		{"bare name on PATH", "gifbatch-no-such-ffmpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.bin, "", nil)
			_, err := e.Start(context.Background(), convert.Invocation{InputPath: "a.mp4", OutputPath: "a.gif"})
			var ee *ExecError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, convert.ReasonEncoderUnavailable, ee.Reason())
		})
	}
}

// --- Integration tests against a real ffmpeg ---

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not on PATH")
	}
}

// makeClip renders a one-second synthetic test video.
func makeClip(t *testing.T, path string) {
	t.Helper()
	out, err := exec.Command("ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=1:size=320x240:rate=10",
		"-pix_fmt", "yuv420p", path).CombinedOutput()
	require.NoError(t, err, string(out))
}

func drain(t *testing.T, ch <-chan convert.Event) []convert.Event {
	t.Helper()
	var evs []convert.Event
	timeout := time.After(60 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return evs
			}
			evs = append(evs, ev)
		case <-timeout:
			t.Fatal("engine did not finish")
		}
	}
}

func TestEngineStart_Converts(t *testing.T) {
	requireFFmpeg(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "clip.mp4")
	out := filepath.Join(dir, "clip.gif")
	makeClip(t, in)

	probeBin := "ffprobe"
	if _, err := exec.LookPath(probeBin); err != nil {
		probeBin = ""
	}
	e := NewEngine("ffmpeg", probeBin, nil)
	ch, err := e.Start(context.Background(), convert.Options{TargetWidth: 160, FrameRate: 5}.Invocation(in, out))
	require.NoError(t, err)

	evs := drain(t, ch)
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, convert.EventEnd, last.Kind)
	for _, ev := range evs[:len(evs)-1] {
		assert.Equal(t, convert.EventProgress, ev.Kind)
	}

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "GIF8"), "output must be a GIF")
}

func TestEngineStart_InvalidInput(t *testing.T) {
	requireFFmpeg(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.mp4")
	out := filepath.Join(dir, "broken.gif")
	require.NoError(t, os.WriteFile(in, []byte("this is not a video"), 0o644))

	e := NewEngine("ffmpeg", "", nil)
	ch, err := e.Start(context.Background(), convert.Invocation{InputPath: in, OutputPath: out, Format: "gif"})
	require.NoError(t, err)

	evs := drain(t, ch)
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	require.Equal(t, convert.EventError, last.Kind)

	var ee *ExecError
	require.ErrorAs(t, last.Err, &ee)
	assert.Equal(t, convert.ReasonInvalidData, ee.Reason())
	assert.NoFileExists(t, out)
}
