// Package clog configures the structured logger shared across the
// orchestrator, coordinator and autofix packages.
package clog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a slog.Logger whose handler is selected by format: "json" for
// machine consumption, anything else (including empty) for text, matching
// CRACKERJACK_LOG_FORMAT's accepted values.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// FromEnv builds a logger using CRACKERJACK_LOG_FORMAT and
// CRACKERJACK_LOG_LEVEL, falling back to text/info.
func FromEnv() *slog.Logger {
	format := os.Getenv("CRACKERJACK_LOG_FORMAT")
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("CRACKERJACK_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return New(os.Stderr, format, level)
}
