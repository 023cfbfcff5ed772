// Package logging sets up structured logging for the matcher pipeline.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with helpers for the pipeline stages so field
// names stay consistent between the store, index, matcher and writers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler. A nil handler logs text to
// stderr at info level.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// Noop discards everything.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// Options controls Setup. Zero values fall back to the environment.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	File   string // also write logs to this file
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_FILE.
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		File:   os.Getenv("LOG_FILE"),
	}
}

// Setup builds the process logger. When a log file is configured, the
// returned close func must be called before exit so the file is flushed.
func Setup(opts Options) (*Logger, func() error, error) {
	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}

	ho := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(out, ho)
	} else {
		h = slog.NewTextHandler(out, ho)
	}
	return New(h), closeFn, nil
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogLoad logs the result of reading one input source.
func (l *Logger) LogLoad(ctx context.Context, source string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "source loaded",
		"source", source,
		"count", count,
	)
}

// LogBuild logs a spatial index build.
func (l *Logger) LogBuild(ctx context.Context, backend string, size int, took time.Duration) {
	l.InfoContext(ctx, "spatial index built",
		"backend", backend,
		"size", size,
		"took", took,
	)
}

// LogMatch logs a completed match pass.
func (l *Logger) LogMatch(ctx context.Context, tolerance float64, records, matched int, took time.Duration) {
	l.InfoContext(ctx, "match pass completed",
		"tolerance", tolerance,
		"records", records,
		"matched", matched,
		"unmatched", records-matched,
		"took", took,
	)
}

// LogSkip logs a record dropped during projection.
func (l *Logger) LogSkip(ctx context.Context, row int, err error) {
	l.WarnContext(ctx, "record skipped",
		"row", row,
		"error", err,
	)
}

// LogWrite logs the result of writing an output.
func (l *Logger) LogWrite(ctx context.Context, destination string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"destination", destination,
			"written", count,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "output written",
		"destination", destination,
		"count", count,
	)
}
