package testutil

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// FakeClock is a clock.Clock whose After fires immediately and advances Now.
// Every requested duration is recorded. Methods other than Now and After are
// not implemented.
type FakeClock struct {
	clock.Clock

	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewFakeClock returns a FakeClock starting at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After records d, advances the clock by d and returns a fired channel.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

// Sleeps returns the durations passed to After, in order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// Slept returns the sum of all recorded sleeps.
func (c *FakeClock) Slept() time.Duration {
	var total time.Duration
	for _, d := range c.Sleeps() {
		total += d
	}
	return total
}

// ManualClock is a clock.Clock whose After channels fire only when Fire is
// called, oldest waiter first.
type ManualClock struct {
	clock.Clock

	mu      sync.Mutex
	now     time.Time
	waiters []chan time.Time
}

// NewManualClock returns a ManualClock starting at now.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After registers a waiter that fires on the next call to Fire.
func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	c.waiters = append(c.waiters, ch)
	return ch
}

// Waiters returns the number of pending After channels.
func (c *ManualClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// Fire releases the oldest pending waiter. It returns false if none is pending.
func (c *ManualClock) Fire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) == 0 {
		return false
	}
	ch := c.waiters[0]
	c.waiters = c.waiters[1:]
	ch <- c.now
	return true
}
