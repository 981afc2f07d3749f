package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	return NewTo(os.Stdout, env)
}

// NewTo — JSON-логгер в произвольный writer; в dev уровень debug.
func NewTo(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("app", "graindesk", "env", env)
}
