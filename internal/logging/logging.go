// Package logging wraps log/slog with a package-level default logger,
// initialized once from configuration at startup.
package logging

import (
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init builds the process-wide default logger at the given level, emitting
// JSON records to stdout.
func Init(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the process-wide default logger, initializing it at info
// level if Init has not yet been called.
func Get() *slog.Logger {
	if defaultLogger == nil {
		return Init("info")
	}
	return defaultLogger
}
