package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text output to stdout; handlers are
// swappable here without touching call sites.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
