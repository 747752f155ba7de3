package core

import (
	"sync"
	"time"
)

// Clock measures how long the running thread has held the executor.
// Start opens a measurement window; Stop returns the elapsed amount since
// the last Start.
type Clock interface {
	Start()
	Stop() int64
}

// ElapsedClock is a Clock counting nanoseconds of wall time.
type ElapsedClock struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
}

// NewElapsedClock creates a clock backed by time.Now.
func NewElapsedClock() *ElapsedClock {
	return &ElapsedClock{now: time.Now}
}

// Start opens a new measurement window.
func (c *ElapsedClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = c.now()
}

// Stop returns the nanoseconds elapsed since the last Start, or 0 if Start
// was never called.
func (c *ElapsedClock) Stop() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started.IsZero() {
		return 0
	}
	return int64(c.now().Sub(c.started))
}

// ConstantClock charges the same amount for every slice. With ConstantClock(0)
// threads that yield take strict turns in the order they yielded.
type ConstantClock int64

// Start implements Clock.
func (ConstantClock) Start() {}

// Stop implements Clock.
func (c ConstantClock) Stop() int64 { return int64(c) }
