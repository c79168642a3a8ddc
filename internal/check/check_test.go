package check

import (
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/gifbatch/internal/config"
)

// recLogger records formatted messages per level.
type recLogger struct {
	lines map[string][]string
}

func newRecLogger() *recLogger { return &recLogger{lines: map[string][]string{}} }

func (r *recLogger) add(level, f string, a ...interface{}) {
	r.lines[level] = append(r.lines[level], fmt.Sprintf(f, a...))
}
func (r *recLogger) Info(f string, a ...interface{})    { r.add("info", f, a...) }
func (r *recLogger) Success(f string, a ...interface{}) { r.add("success", f, a...) }
func (r *recLogger) Warn(f string, a ...interface{})    { r.add("warn", f, a...) }
func (r *recLogger) Error(f string, a ...interface{})   { r.add("error", f, a...) }
func (r *recLogger) Debug(v bool, f string, a ...interface{}) {
	if v {
		r.add("debug", f, a...)
	}
}

const sampleEncoders = `Encoders:
 V..... = Video
 ------
 V....D gif                  GIF (Graphics Interchange Format)
 V....D png                  PNG (Portable Network Graphics) image
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestListsEncoder(t *testing.T) {
	assert.True(t, listsEncoder(sampleEncoders, "gif"))
	assert.True(t, listsEncoder(sampleEncoders, "aac"))
	assert.False(t, listsEncoder(sampleEncoders, "libx265"))
	assert.False(t, listsEncoder(sampleEncoders, "="))
}

func TestCheckDeps_MissingFfmpeg(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = "/nonexistent/ffmpeg"
	cfg.FFprobeBin = "/nonexistent/ffprobe"
	log := newRecLogger()
	assert.ErrorIs(t, CheckDeps(&cfg, log), ErrFfmpegNotFound)
	assert.Empty(t, cfg.FFprobeBin, "ffprobe is checked even when ffmpeg is missing")
	assert.Len(t, log.lines["warn"], 1)
}

func TestRunCheck_MissingFfmpeg(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = "/nonexistent/ffmpeg"
	cfg.FFprobeBin = "/nonexistent/ffprobe"
	log := newRecLogger()
	assert.False(t, RunCheck(&cfg, log))
	assert.NotEmpty(t, log.lines["error"])
	assert.NotEmpty(t, log.lines["warn"])
}

func TestCheckDeps_MissingFfprobeIsWarning(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not on PATH")
	}
	cfg := config.DefaultConfig()
	cfg.FFprobeBin = "/nonexistent/ffprobe"
	log := newRecLogger()

	require.NoError(t, CheckDeps(&cfg, log))
	assert.Empty(t, cfg.FFprobeBin)
	assert.Len(t, log.lines["warn"], 1)
}

func TestRunCheck_WithFfmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not on PATH")
	}
	cfg := config.DefaultConfig()
	log := newRecLogger()
	assert.True(t, RunCheck(&cfg, log))
	assert.Contains(t, log.lines["success"], "gif encoder works")
}
