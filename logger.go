package cityroads

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with build-specific helpers so every message uses
// the same field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to w (stderr if nil).
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes logfmt text to w (stderr if nil).
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithDataset adds the dataset path to every message.
func (l *Logger) WithDataset(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", path),
	}
}

// LogBuildStart logs the start of a build at debug level.
func (l *Logger) LogBuildStart(ctx context.Context, path string) {
	l.DebugContext(ctx, "building city roads section",
		"dataset", path,
	)
}

// LogClassify logs the classifier outcome.
func (l *Logger) LogClassify(ctx context.Context, path string, stats ClassifyStats) {
	l.DebugContext(ctx, "classified road features",
		"dataset", path,
		"features", stats.Features,
		"roads", stats.Roads,
		"city_roads", stats.Retained,
	)
}

// LogBuild logs the outcome of a build: error level on failure, info level
// on success.
func (l *Logger) LogBuild(ctx context.Context, path string, res Result, err error) {
	if err != nil {
		attrs := []any{"dataset", path, "error", err}
		var be *BuildError
		if errors.As(err, &be) {
			attrs = append(attrs, "stage", string(be.Stage))
		}
		l.ErrorContext(ctx, "city roads section build failed", attrs...)
		return
	}
	if res.Empty {
		l.InfoContext(ctx, "no city roads found, section not written",
			"dataset", path,
			"roads", res.Classify.Roads,
		)
		return
	}
	l.InfoContext(ctx, "city roads section built",
		"dataset", path,
		"ids", res.IDs,
		"bytes", res.Bytes,
		"duration", res.Duration,
	)
}

// LogPublish logs an upload of a built container.
func (l *Logger) LogPublish(ctx context.Context, path, key string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"dataset", path,
			"key", key,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "published",
		"dataset", path,
		"key", key,
		"bytes", size,
	)
}
