package backup

import (
	"context"
	"fmt"
	"netbackup/internal/apperrors"
	"netbackup/internal/controller"
	"netbackup/internal/observability"
	"time"

	"github.com/juju/clock"
)

// Prober reads the declared size of a remote file without downloading it.
type Prober interface {
	Probe(ctx context.Context, target string, session controller.Session) (int64, error)
}

// Poller waits for a remote file to grow past CompletenessThreshold.
type Poller struct {
	prober  Prober
	clock   clock.Clock
	metrics *observability.Metrics
}

// NewPoller creates a poller. metrics may be nil.
func NewPoller(prober Prober, clk clock.Clock, metrics *observability.Metrics) *Poller {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Poller{
		prober:  prober,
		clock:   clk,
		metrics: metrics,
	}
}

// AwaitReady probes target up to maxAttempts times, sleeping delay between
// attempts, and returns nil as soon as a probe reports a complete size.
//
// Probe errors and short sizes count as a not-ready attempt; they never end
// the loop early. When the budget is spent the error wraps ErrNotReady.
func (p *Poller) AwaitReady(ctx context.Context, target string, session controller.Session, maxAttempts int, delay time.Duration) error {
	if maxAttempts < 1 {
		return apperrors.Validation("maxAttempts", "maxAttempts must be at least 1")
	}
	logger := loggerFrom(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		size, err := p.prober.Probe(ctx, target, session)
		switch {
		case err != nil:
			lastErr = err
			logger.Warn("Error checking backup file", "attempt", attempt, "error", err)
		case IsComplete(size):
			p.record(ctx, true)
			logger.Info("Backup file is ready", "attempt", attempt, "bytes", size)
			return nil
		default:
			lastErr = fmt.Errorf("backup file is %d bytes, need more than %d", size, CompletenessThreshold)
			logger.Info("Backup file size", "attempt", attempt, "bytes", size)
		}
		p.record(ctx, false)

		if attempt == maxAttempts {
			break
		}
		logger.Info("Backup file not ready yet, waiting", "attempt", attempt, "maxAttempts", maxAttempts, "delay", delay)
		if err := wait(ctx, p.clock, delay); err != nil {
			return err
		}
	}

	return apperrors.NotReady(maxAttempts, lastErr)
}

func (p *Poller) record(ctx context.Context, ready bool) {
	if p.metrics != nil {
		p.metrics.RecordPollAttempt(ctx, ready)
	}
}
