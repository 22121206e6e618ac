package database

import (
	"context"
	"log/slog"
	"time"
)

// Hook observes every statement after the driver returns. err is the mapped
// error handed back to the caller. Implementations must be goroutine-safe.
type Hook interface {
	AfterQuery(ctx context.Context, query string, args []any, elapsed time.Duration, err error)
}

// NewLogHook logs statements at debug level and failures at error level.
// Bound arguments are never logged.
func NewLogHook(logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &logHook{logger: logger}
}

type logHook struct {
	logger *slog.Logger
}

func (h *logHook) AfterQuery(ctx context.Context, query string, _ []any, elapsed time.Duration, err error) {
	attrs := []any{
		slog.String("query", trimQuery(query)),
		slog.Duration("duration", elapsed),
	}
	if err != nil && !IsNotFound(err) {
		h.logger.ErrorContext(ctx, "query failed", append(attrs, slog.Any("error", err))...)
		return
	}
	h.logger.DebugContext(ctx, "query", attrs...)
}

func trimQuery(q string) string {
	if len(q) > 500 {
		return q[:500] + "…"
	}
	return q
}
