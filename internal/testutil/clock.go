package testutil

import (
	"sync"
	"time"
)

// DefaultBase is the first timestamp of a DeterministicClock created with a
// zero base.
var DefaultBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock hands out evenly spaced timestamps for tests.
//
// The same scenario driven by a fresh clock produces identical TimeStamp
// values, which keeps golden output byte-stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock whose first Next() returns base.
// A zero base means DefaultBase. Each later call advances by one second.
func NewDeterministicClock(base time.Time) *DeterministicClock {
	if base.IsZero() {
		base = DefaultBase
	}
	return &DeterministicClock{base: base, step: time.Second}
}

// Next returns the next timestamp.
//
// Monotonic: each call is exactly one step after the previous one.
func (c *DeterministicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Count returns how many timestamps have been handed out.
func (c *DeterministicClock) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock so the next call to Next() returns base again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
