// Package logging builds the slog loggers used by the CLI and server.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a configured slog logger and the function releasing its output.
type Logger struct {
	Logger *slog.Logger
	Close  func() error
	Path   string
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// New returns a JSON logger writing to a rotating file at path, or a text
// logger on stderr when path is empty.
func New(path string, debug bool) (Logger, error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if path == "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		return Logger{Logger: slog.New(handler), Close: func() error { return nil }}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Logger{Logger: Nop(), Close: func() error { return nil }}, err
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    15, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	return Logger{Logger: slog.New(handler), Close: file.Close, Path: path}, nil
}
