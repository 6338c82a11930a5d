package testutil

import "sync/atomic"

// Counter is a resettable monotonic counter for deterministic test IDs.
// The first call to Next returns 1. Safe for concurrent use.
type Counter struct {
	n atomic.Int64
}

// Next increments and returns the counter.
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// Current returns the last value handed out, or 0.
func (c *Counter) Current() int64 {
	return c.n.Load()
}

// Reset makes the next call to Next return 1 again.
func (c *Counter) Reset() {
	c.n.Store(0)
}
