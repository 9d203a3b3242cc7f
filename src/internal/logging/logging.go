// Package logging builds the slog loggers used across the server.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents the output format for logs
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// New creates a logger writing to w. A nil writer means stderr.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// NewDiscard creates a logger that drops everything. Useful in tests.
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatFromString returns JSONFormat for "json" and TextFormat otherwise.
func FormatFromString(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(JSONFormat)) {
		return JSONFormat
	}
	return TextFormat
}
