package backup

import (
	"context"
	"errors"
	"fmt"
	"netbackup/internal/apperrors"
	"netbackup/internal/controller"
	"netbackup/internal/observability"
	"time"

	"github.com/juju/clock"
)

// Fetcher downloads a remote file into memory.
type Fetcher interface {
	Fetch(ctx context.Context, target string, session controller.Session) (*controller.Artifact, error)
}

// Store persists a blob under a key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Stored confirms a persisted backup file.
type Stored struct {
	Key         string `json:"key"`
	Bytes       int64  `json:"bytes"`
	ContentType string `json:"contentType"`
	Attempts    int    `json:"attempts"`
}

// errUndersize marks an attempt whose body was not above the threshold.
var errUndersize = errors.New("downloaded file is too small")

// Transfer copies a remote file into a Store.
type Transfer struct {
	fetcher Fetcher
	store   Store
	clock   clock.Clock
	metrics *observability.Metrics
}

// NewTransfer creates a transfer engine. metrics may be nil.
func NewTransfer(fetcher Fetcher, store Store, clk clock.Clock, metrics *observability.Metrics) *Transfer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Transfer{
		fetcher: fetcher,
		store:   store,
		clock:   clk,
		metrics: metrics,
	}
}

// FetchAndStore downloads source and writes it to key, retrying up to
// maxAttempts times with delay between attempts.
//
// Only a body strictly larger than CompletenessThreshold is written, and at
// most one write is made. Download errors, short bodies and store errors all
// count as a failed attempt. When the budget is spent the error wraps
// ErrTransferExhausted.
func (t *Transfer) FetchAndStore(ctx context.Context, source, key string, session controller.Session, maxAttempts int, delay time.Duration) (*Stored, error) {
	if maxAttempts < 1 {
		return nil, apperrors.Validation("maxAttempts", "maxAttempts must be at least 1")
	}
	logger := loggerFrom(ctx).With("key", key)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		stored, err := t.attempt(ctx, source, key, session)
		if err == nil {
			stored.Attempts = attempt
			t.record(ctx, "stored")
			if t.metrics != nil {
				t.metrics.RecordStored(ctx, stored.Bytes)
			}
			logger.Info("Stored backup file", "attempt", attempt, "bytes", stored.Bytes)
			return stored, nil
		}

		lastErr = err
		if errors.Is(err, errUndersize) {
			t.record(ctx, "undersize")
			logger.Warn("File size is less than expected, retrying", "attempt", attempt, "error", err)
		} else {
			t.record(ctx, "failed")
			logger.Warn("Transfer attempt failed", "attempt", attempt, "error", err)
		}

		if attempt == maxAttempts {
			break
		}
		if err := wait(ctx, t.clock, delay); err != nil {
			return nil, err
		}
	}

	return nil, apperrors.TransferExhausted(maxAttempts, lastErr)
}

func (t *Transfer) attempt(ctx context.Context, source, key string, session controller.Session) (*Stored, error) {
	artifact, err := t.fetcher.Fetch(ctx, source, session)
	if err != nil {
		return nil, err
	}

	size := artifact.Size()
	loggerFrom(ctx).Info("Downloaded file", "bytes", size)
	if !IsComplete(size) {
		return nil, fmt.Errorf("%w: %d bytes", errUndersize, size)
	}

	if err := t.store.Put(ctx, key, artifact.Data, artifact.ContentType); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	return &Stored{
		Key:         key,
		Bytes:       size,
		ContentType: artifact.ContentType,
	}, nil
}

func (t *Transfer) record(ctx context.Context, outcome string) {
	if t.metrics != nil {
		t.metrics.RecordTransferAttempt(ctx, outcome)
	}
}
