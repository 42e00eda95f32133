// Package frozen provides a clock that only moves when told to.
package frozen

import (
	"sync"
	"time"
)

// Clock returns the same instant until Set or Advance is called.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// New returns a Clock stopped at t.
func New(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the frozen instant.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
