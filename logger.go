package hast

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with hast-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel parses a level name such as "debug", "info", "warn" or "error".
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// WithReport adds a report field to the logger.
func (l *Logger) WithReport(reportID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("report", reportID),
	}
}

// LogInsert logs the outcome of a first-time insert.
func (l *Logger) LogInsert(ctx context.Context, reportID string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"report", reportID,
			"records", records,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"report", reportID,
			"records", records,
		)
	}
}

// LogDuplicate logs an insert that was ignored because the report exists.
func (l *Logger) LogDuplicate(ctx context.Context, reportID string) {
	l.InfoContext(ctx, "insert ignored, report already present",
		"report", reportID,
	)
}

// LogLookup logs a lookup.
func (l *Logger) LogLookup(ctx context.Context, hashes, matched int) {
	l.DebugContext(ctx, "lookup completed",
		"hashes", hashes,
		"matched", matched,
	)
}

// LogPersist logs the write of a report file.
func (l *Logger) LogPersist(ctx context.Context, reportID, name string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "persist failed",
			"report", reportID,
			"file", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "report saved",
			"report", reportID,
			"file", name,
			"records", records,
		)
	}
}

// LogSkippedFile logs a persisted file that recovery could not load.
func (l *Logger) LogSkippedFile(ctx context.Context, name string, err error) {
	l.WarnContext(ctx, "recovery skipped file",
		"file", name,
		"error", err,
	)
}

// LogRecovery logs the outcome of startup recovery.
func (l *Logger) LogRecovery(ctx context.Context, r RecoveryReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recovery failed",
			"loaded", r.Loaded,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "recovery completed",
			"loaded", r.Loaded,
			"duplicates", r.Duplicates,
			"skipped", len(r.Skipped),
			"duration", r.Duration,
		)
	}
}
