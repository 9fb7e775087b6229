package session

import "time"

// DispatchClock remembers when the last dispatch started.
type DispatchClock struct {
	last time.Time
}

func NewDispatchClock(start time.Time) *DispatchClock {
	return &DispatchClock{last: start}
}

// Reset marks now as the start of a dispatch.
func (c *DispatchClock) Reset(now time.Time) {
	c.last = now
}

func (c *DispatchClock) Last() time.Time {
	return c.last
}

// Due reports whether at least interval has passed since the last reset.
func (c *DispatchClock) Due(now time.Time, interval time.Duration) bool {
	return now.Sub(c.last) >= interval
}
