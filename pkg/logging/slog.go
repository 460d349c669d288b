package logging

import (
	"log/slog"
	"os"
)

// New returns a JSON logger writing to stdout. Level defaults to info;
// LOG_LEVEL=debug flips it for local debugging.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
