package service

import (
    "sync"
    "time"
)

// Clock supplies the current time to the services.
type Clock interface {
    Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock returns a settable instant.  It is safe for concurrent use.
type FixedClock struct {
    mu  sync.Mutex
    now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
    return &FixedClock{now: t.UTC()}
}

func (c *FixedClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.now
}

func (c *FixedClock) Set(t time.Time) {
    c.mu.Lock()
    c.now = t.UTC()
    c.mu.Unlock()
}

func (c *FixedClock) Add(d time.Duration) {
    c.mu.Lock()
    c.now = c.now.Add(d)
    c.mu.Unlock()
}
