package session

import (
	"sync"
	"time"
)

// Clock measures elapsed editing time and can be paused, which freezes
// the drive angle.
type Clock struct {
	mu       sync.Mutex
	now      func() time.Time
	start    time.Time
	paused   bool
	pausedAt time.Time
	offset   time.Duration // total time spent paused
}

// NewClock starts a clock. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, start: now()}
}

// Elapsed returns the running time since start, excluding pauses.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	end := c.now()
	if c.paused {
		end = c.pausedAt
	}
	return end.Sub(c.start) - c.offset
}

// Toggle pauses a running clock or resumes a paused one.
func (c *Clock) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.offset += c.now().Sub(c.pausedAt)
		c.paused = false
		return
	}
	c.pausedAt = c.now()
	c.paused = true
}

// Paused reports whether the clock is frozen.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
