package chain

import "sync/atomic"

// HeightClock is a Clock advanced by an external sequencer. The core only
// observes the counter; it never produces blocks itself.
type HeightClock struct {
	height atomic.Uint64
}

// NewHeightClock returns a clock starting at the given height.
func NewHeightClock(start uint64) *HeightClock {
	c := &HeightClock{}
	c.height.Store(start)
	return c
}

// Height returns the current logical height.
func (c *HeightClock) Height() uint64 { return c.height.Load() }

// Advance moves the clock forward by n and returns the new height.
func (c *HeightClock) Advance(n uint64) uint64 { return c.height.Add(n) }

// Set jumps the clock to h. It never moves backwards; a lower h is ignored
// and the current height returned, preserving monotonicity.
func (c *HeightClock) Set(h uint64) uint64 {
	for {
		cur := c.height.Load()
		if h <= cur {
			return cur
		}
		if c.height.CompareAndSwap(cur, h) {
			return h
		}
	}
}
