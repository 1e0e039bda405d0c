// Package log provides storoid's structured logger: a thin wrapper over
// log/slog that splits informational and warning/error records across two
// writers, the way an operator tailing stdout/stderr separately expects.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the logging contract the admin CLI depends on.
type Logger interface {
	DebugContext(ctx context.Context, msg string, keysAndValues ...any)
	InfoContext(ctx context.Context, msg string, keysAndValues ...any)
	WarnContext(ctx context.Context, msg string, keysAndValues ...any)
	ErrorContext(ctx context.Context, msg string, keysAndValues ...any)
}

// NewLogger creates a Logger in the requested format ("standard" or
// "json").
func NewLogger(format, level string, out, err io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case "json":
		return newLogger(out, err, level, true)
	case "standard", "":
		return newLogger(out, err, level, false)
	default:
		return nil, fmt.Errorf("logging format invalid: %s", format)
	}
}

// stdLogger routes Debug/Info to outLogger and Warn/Error to errLogger.
type stdLogger struct {
	outLogger *slog.Logger
	errLogger *slog.Logger
}

func newLogger(outW, errW io.Writer, logLevel string, json bool) (Logger, error) {
	var programLevel = new(slog.LevelVar)
	slogLevel, err := SeverityToLevel(logLevel)
	if err != nil {
		return nil, err
	}
	programLevel.Set(slogLevel)

	opts := &slog.HandlerOptions{Level: programLevel}
	newHandler := func(w io.Writer) slog.Handler {
		if json {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	return &stdLogger{
		outLogger: slog.New(newHandler(outW)),
		errLogger: slog.New(newHandler(errW)),
	}, nil
}

func (sl *stdLogger) DebugContext(ctx context.Context, msg string, keysAndValues ...any) {
	sl.outLogger.DebugContext(ctx, msg, keysAndValues...)
}

func (sl *stdLogger) InfoContext(ctx context.Context, msg string, keysAndValues ...any) {
	sl.outLogger.InfoContext(ctx, msg, keysAndValues...)
}

func (sl *stdLogger) WarnContext(ctx context.Context, msg string, keysAndValues ...any) {
	sl.errLogger.WarnContext(ctx, msg, keysAndValues...)
}

func (sl *stdLogger) ErrorContext(ctx context.Context, msg string, keysAndValues ...any) {
	sl.errLogger.ErrorContext(ctx, msg, keysAndValues...)
}

const (
	Debug = "DEBUG"
	Info  = "INFO"
	Warn  = "WARN"
	Error = "ERROR"
)

// SeverityToLevel maps a severity string onto its slog.Level.
func SeverityToLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case Debug:
		return slog.LevelDebug, nil
	case Info, "":
		return slog.LevelInfo, nil
	case Warn:
		return slog.LevelWarn, nil
	case Error:
		return slog.LevelError, nil
	default:
		return slog.Level(0), fmt.Errorf("invalid log level: %s", s)
	}
}
