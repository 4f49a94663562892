package testutil

import (
	"sync"
	"time"
)

// ClockEpoch is the first timestamp a DeterministicClock returns.
var ClockEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock hands out RFC 3339 timestamps one second apart,
// starting at ClockEpoch. Use its Now method with store.WithClock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	tick int64
}

// NewDeterministicClock creates a clock whose first Now() is ClockEpoch.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Now returns the next timestamp and advances the clock by one second.
func (c *DeterministicClock) Now() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := ClockEpoch.Add(time.Duration(c.tick) * time.Second)
	c.tick++
	return t.Format(time.RFC3339)
}

// Ticks returns how many timestamps have been handed out.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Reset rewinds the clock to ClockEpoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = 0
}
