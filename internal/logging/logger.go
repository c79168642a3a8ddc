// Package logging provides the leveled console logger used across gifbatch.
// It keeps a small printf-style API (Info, Success, Warn, Error, Debug) on
// top of a zap core: colored console output, errors on stderr, and an
// optional plain-text file sink.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/backmassage/gifbatch/internal/config"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu    sync.Mutex
	base  *zap.Logger
	file  *os.File
	color bool
}

// NewLogger resolves cfg.ColorMode against stdout and builds the console
// cores. When cfg.LogFile is set the file is opened for append; call Close
// when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	color := useColor(cfg.ColorMode, os.Stdout)
	console := zapcore.NewConsoleEncoder(encoderConfig(color))
	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })
	errorAndUp := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })

	cores := []zapcore.Core{
		zapcore.NewCore(console, zapcore.Lock(os.Stdout), belowError),
		zapcore.NewCore(console, zapcore.Lock(os.Stderr), errorAndUp),
	}

	l := &Logger{color: color}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.file = f
		plain := zapcore.NewConsoleEncoder(encoderConfig(false))
		cores = append(cores, zapcore.NewCore(plain, zapcore.AddSync(f), zapcore.DebugLevel))
	}

	l.base = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// NewWithCore wraps an existing zap core. Tests use it with
// zaptest/observer to assert on emitted entries.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{base: zap.New(core)}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{base: zap.NewNop()}
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	level := zapcore.CapitalLevelEncoder
	if color {
		level = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		NameKey:          zapcore.OmitKey,
		CallerKey:        zapcore.OmitKey,
		StacktraceKey:    zapcore.OmitKey,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      level,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// With returns a child logger that attaches fields to every entry. The
// child shares the parent's file sink; only the parent should be closed.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{base: l.base.With(fields...), color: l.color}
}

// Color reports whether console output uses ANSI colors.
func (l *Logger) Color() bool { return l.color }

// Zap exposes the underlying zap logger for components that log structured
// fields directly.
func (l *Logger) Zap() *zap.Logger { return l.base }

// Close flushes buffered entries and closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.base.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.base.Info(fmt.Sprintf(format, args...))
}

// Success logs at INFO level tagged result=ok.
func (l *Logger) Success(format string, args ...interface{}) {
	l.base.Info(fmt.Sprintf(format, args...), zap.String("result", "ok"))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.base.Warn(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (stderr on the console).
func (l *Logger) Error(format string, args ...interface{}) {
	l.base.Error(fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.base.Debug(fmt.Sprintf(format, args...))
}
