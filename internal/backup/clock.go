package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"
)

// wait blocks for d on clk. A non-positive d returns at once.
func wait(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clk.After(d):
		return nil
	}
}

type loggerKey struct{}

// withLogger attaches a run-scoped logger to ctx.
func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// loggerFrom returns the run-scoped logger, or the default logger.
func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
