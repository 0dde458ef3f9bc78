// Package logging builds the structured loggers used by the commands and the
// HTTP server.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New returns a text logger, or a JSON logger when asJSON is set. Unknown
// levels fall back to info.
func New(w io.Writer, level string, asJSON bool) *slog.Logger {
	lvl, _ := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Timed logs the start of operation at debug level and returns a func that
// logs its completion with the elapsed time.
func Timed(ctx context.Context, logger *slog.Logger, operation string, args ...any) func() {
	start := time.Now()
	logger.DebugContext(ctx, "starting "+operation, args...)

	return func() {
		logger.InfoContext(ctx, "completed "+operation,
			append(args, "duration_ms", time.Since(start).Milliseconds())...)
	}
}
