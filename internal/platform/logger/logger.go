package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output keeps log
// aggregation simple in deployment; level comes from AGORAX_LOG_LEVEL.
func New() *slog.Logger {
	level := slog.LevelInfo
	if raw := os.Getenv("AGORAX_LOG_LEVEL"); raw != "" {
		_ = level.UnmarshalText([]byte(raw))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
