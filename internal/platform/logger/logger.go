package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON to stdout so the platform log shipper
// can pick it up unchanged.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
