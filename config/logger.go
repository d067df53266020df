package config

import (
	"io"
	"log/slog"
	"strings"
)

// ServiceName tags every log record written through NewLogger.
const ServiceName = "campusevents"

// NewLogger builds the process logger for cfg, writing to w. Production emits JSON so the
// records can be shipped as-is; every other environment gets the text handler.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", ServiceName, "env", cfg.Environment)
}

// parseLevel accepts debug, info, warn and error in any case, with slog's "+N"/"-N" offsets.
// An empty value means info.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}
