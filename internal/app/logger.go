package app

import (
	"log/slog"
	"os"
)

// NewLogger builds a slog.Logger. Production runs emit JSON, everything
// else gets the text handler for readability.
func NewLogger(format string) *slog.Logger {
	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler)
}
