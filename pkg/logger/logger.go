package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const (
	// RequestIDKey is the context key for the request ID.
	RequestIDKey contextKey = "request_id"
	// SessionIDKey is the context key for the browser session ID.
	SessionIDKey contextKey = "session_id"
)

// Logger is a structured logger wrapper around slog
type Logger struct {
	*slog.Logger
}

// New creates a new structured logger. LOG_FORMAT=json forces JSON output.
func New(env string, output io.Writer) *Logger {
	return NewWithFormat(env, os.Getenv("LOG_FORMAT"), output)
}

// NewWithFormat creates a new structured logger with an explicit format override.
func NewWithFormat(env, logFormat string, output io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	switch {
	case env == "production":
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(output, opts)
	case logFormat == "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a logger writing to stdout
func NewDefault(env string) *Logger {
	return New(env, os.Stdout)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return NewWithFormat("test", "text", io.Discard)
}

// replaceAttr formats timestamps as RFC3339 and trims source paths to file:line.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339))
		}
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			file := src.File
			if idx := strings.LastIndex(file, "/"); idx >= 0 {
				file = file[idx+1:]
			}
			a.Value = slog.StringValue(fmt.Sprintf("%s:%d", file, src.Line))
		}
	}
	return a
}

// WithContext adds request and session identifiers found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	result := l
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		result = &Logger{Logger: result.With("request_id", requestID)}
	}
	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
		result = &Logger{Logger: result.With("session_id", sessionID)}
	}
	return result
}

// WithField creates a new logger with an additional field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.With(key, value)}
}

// WithError creates a new logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.With("error", err.Error())}
}

// WithDuration creates a new logger with a duration_ms field
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return &Logger{Logger: l.With("duration_ms", d.Milliseconds())}
}
