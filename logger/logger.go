package logger

import (
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Info(msg string, keyvals ...interface{})

	Warn(msg string, keyvals ...interface{})

	Error(msg string, keyvals ...interface{})

	Debug(msg string, keyvals ...interface{})
}

func New(level slog.Level) Logger {
	opts := &slog.HandlerOptions{
		Level:     level, // minimum log level
		AddSource: true,  // include file + line number
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

// NewDiscard returns a logger that drops everything, for callers that only need the interface.
func NewDiscard() Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
