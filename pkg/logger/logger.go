package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// Logger defines the interface for logging in the Tabula system.
// It provides standard logging levels and a mechanism to add structured context.
type Logger interface {
	// Debug logs a message at the debug level.
	Debug(msg string, args ...any)
	// Info logs a message at the info level.
	Info(msg string, args ...any)
	// Warn logs a message at the warning level.
	Warn(msg string, args ...any)
	// Error logs a message at the error level.
	Error(msg string, args ...any)
	// With returns a new Logger with the given structured context added.
	With(args ...any) Logger
}

// Log is the global logger instance used throughout the application.
// It is initialized with a default JSON handler pointing to stderr so that
// simulation traces on stdout stay clean.
var Log Logger = New(os.Stderr, "info", "json")

// InitLogger replaces the global Log with one at the given level.
// Supported levels are "debug", "info", "warn", and "error"; anything else means info.
// Format is "json" or "text".
func InitLogger(level, format string) {
	Log = New(os.Stderr, level, format)
}

// New builds a Logger writing to w.
func New(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &wrapper{l: slog.New(handler)}
}

// Discard returns a Logger that drops everything. Used by tests and benchmarks.
func Discard() Logger {
	return &wrapper{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type wrapper struct {
	l *slog.Logger
}

func (w *wrapper) Debug(msg string, args ...any) { w.log(slog.LevelDebug, msg, args...) }
func (w *wrapper) Info(msg string, args ...any)  { w.log(slog.LevelInfo, msg, args...) }
func (w *wrapper) Warn(msg string, args ...any)  { w.log(slog.LevelWarn, msg, args...) }
func (w *wrapper) Error(msg string, args ...any) { w.log(slog.LevelError, msg, args...) }
func (w *wrapper) With(args ...any) Logger       { return &wrapper{l: w.l.With(args...)} }

// log records the caller of the level method as the source, not this file.
func (w *wrapper) log(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !w.l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // runtime.Callers, log, Debug/Info/Warn/Error
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = w.l.Handler().Handle(ctx, r)
}

// Personal.AI order the ending
