package testutil

import (
	"sync"
	"time"
)

// FixedClock is a settable wall clock for tests.
//
// Unlike the system clock it only moves when told to, so "today" is stable
// for overdue checks and stored timestamps are predictable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock reading t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// DefaultNow is the instant test clocks start at unless told otherwise.
var DefaultNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// Now returns the current reading.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
