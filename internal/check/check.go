// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for ffmpeg, its GIF encoder, and ffprobe.
package check

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/backmassage/gifbatch/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound    = errors.New("ffmpeg not found on PATH")
	ErrGIFEncoderMissing = errors.New("ffmpeg has no gif encoder")
)

// Logger is the minimal logging interface needed by this package.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the --check flow and reports whether every required piece
// works: ffmpeg, the gif encoder (with a tiny test encode) and, as an
// optional extra, ffprobe.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkFfmpeg(cfg.FFmpegBin, log)
	if ok {
		ok = checkGIFEncoder(cfg.FFmpegBin, log) && ok
	}
	checkFfprobe(cfg.FFprobeBin, log)

	if ok {
		log.Success("Ready to convert")
	} else {
		log.Error("Some required components are missing")
	}
	return ok
}

func checkFfmpeg(bin string, log Logger) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("ffmpeg not found (%s)", bin)
		return false
	}
	v, err := toolVersion(bin)
	if err != nil {
		log.Warn("ffmpeg found but -version failed: %v", err)
		return true
	}
	log.Success("ffmpeg: %s", v)
	return true
}

func checkGIFEncoder(bin string, log Logger) bool {
	has, err := hasGIFEncoder(bin)
	if err != nil {
		log.Error("Could not list encoders: %v", err)
		return false
	}
	if !has {
		log.Error("gif encoder not available in this ffmpeg build")
		return false
	}
	log.Info("Testing gif encoder...")
	if !runSilent(bin, gifTestArgs()...) {
		log.Error("gif test encode failed")
		return false
	}
	log.Success("gif encoder works")
	return true
}

func checkFfprobe(bin string, log Logger) {
	if bin == "" {
		log.Warn("ffprobe disabled: progress percentages will read 0%%")
		return
	}
	if _, err := exec.LookPath(bin); err != nil {
		log.Warn("ffprobe not found (%s): progress percentages will read 0%%", bin)
		return
	}
	if v, err := toolVersion(bin); err == nil {
		log.Success("ffprobe: %s", v)
	}
}

// CheckDeps is the pre-pipeline validation. A missing ffprobe only costs
// progress percentages: it is logged as a warning and cfg.FFprobeBin is
// cleared so the engine stops looking for it. A missing ffmpeg or gif
// encoder is returned; the batch logs it and lets each file fail on its own.
func CheckDeps(cfg *config.Config, log Logger) error {
	if cfg.FFprobeBin != "" {
		if _, err := exec.LookPath(cfg.FFprobeBin); err != nil {
			log.Warn("ffprobe not found (%s), progress will be reported without percentages", cfg.FFprobeBin)
			cfg.FFprobeBin = ""
		}
	}

	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return ErrFfmpegNotFound
	}
	has, err := hasGIFEncoder(cfg.FFmpegBin)
	if err != nil {
		return fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	if !has {
		return ErrGIFEncoderMissing
	}
	return nil
}

// --- internal helpers ---

func toolVersion(bin string) (string, error) {
	out, err := exec.Command(bin, "-version").Output()
	if err != nil {
		return "", err
	}
	first := strings.TrimSpace(string(out))
	if idx := strings.Index(first, "\n"); idx > 0 {
		first = first[:idx]
	}
	return first, nil
}

func hasGIFEncoder(bin string) (bool, error) {
	out, err := exec.Command(bin, "-hide_banner", "-encoders").Output()
	if err != nil {
		return false, err
	}
	return listsEncoder(string(out), "gif"), nil
}

// listsEncoder reports whether `ffmpeg -encoders` output names encoder.
// Entries follow a "------" separator and look like
// " V....D gif    GIF (Graphics Interchange Format)".
func listsEncoder(out, name string) bool {
	_, entries, found := strings.Cut(out, "------")
	if !found {
		entries = out
	}
	for _, line := range strings.Split(entries, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

// gifTestArgs renders a short synthetic clip through the same filter chain
// a real conversion uses and discards the GIF.
func gifTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=duration=0.2:size=64x48:rate=10",
		"-vf", "scale=32:-2,fps=5",
		"-f", "gif", "-",
	}
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
