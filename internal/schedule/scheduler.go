// Package schedule fires backup runs on a fixed interval.
package schedule

import (
	"context"
	"log/slog"
	"netbackup/internal/backup"
	"sync"
	"time"

	"github.com/juju/clock"
)

// Runner executes one backup run.
type Runner interface {
	Run(ctx context.Context, trigger backup.Trigger) *backup.Outcome
}

// Scheduler starts a scheduled run every interval. Each run executes in
// its own goroutine so the timer never waits for a run to finish; runs that
// overlap are not coordinated.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	clock    clock.Clock

	stop     chan struct{}
	done     chan struct{}
	inflight sync.WaitGroup
	once     sync.Once
}

// New creates a scheduler. It does nothing until Start is called.
func New(runner Runner, interval time.Duration, clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clk,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins firing runs. A non-positive interval disables scheduling.
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		slog.Info("Scheduled backups disabled")
		close(s.done)
		return
	}
	slog.Info("Scheduled backups enabled", "interval", s.interval)
	go s.loop()
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.clock.After(s.interval):
			s.fire()
		}
	}
}

// fire launches a run detached from the timer.
func (s *Scheduler) fire() {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.runner.Run(context.Background(), backup.TriggerScheduled)
	}()
}

// Close stops firing new runs and waits for in-flight runs until ctx is done.
// Start must have been called.
func (s *Scheduler) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	<-s.done

	finished := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		slog.Warn("Scheduled backup still running at shutdown")
		return ctx.Err()
	}
}
