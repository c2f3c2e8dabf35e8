// Package logger configures the process-wide slog default.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

var levelVar = new(slog.LevelVar)

// Init installs a JSON logger on w as the slog default.
func Init(w io.Writer, lvl string) *slog.Logger {
	SetLevel(lvl)
	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar}))
	slog.SetDefault(l)
	return l
}

// SetLevel configures the global log level (debug, info, warn, error).
// Unknown values fall back to info.
func SetLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn", "warning":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
}

// Level returns the current global level.
func Level() slog.Level {
	return levelVar.Level()
}
