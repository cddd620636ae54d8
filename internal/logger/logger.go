package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// creates a new structured logger (w/ specified debug level)
func New(debug bool) *slog.Logger {
	if !debug {
		// quiet until the configured level is known
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	return NewWithLevel(os.Stderr, slog.LevelDebug)
}

// NewWithLevel creates a text logger writing records at or above level to w
func NewWithLevel(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// FromConfig builds the stderr logger for a configured level name;
// debug overrides the configured level
func FromConfig(debug bool, level string) (*slog.Logger, error) {
	if debug {
		return New(true), nil
	}
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewWithLevel(os.Stderr, parsed), nil
}

// ParseLevel converts a case-insensitive level name to an slog.Level.
// An empty name means error, the quiet CLI default.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "", "error":
		return slog.LevelError, nil
	default:
		return slog.LevelError, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", s)
	}
}
