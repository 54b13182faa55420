package sim

import "time"

// Clock turns variable frame times into a whole number of fixed ticks.
// The remainder carries over to the next frame.
type Clock struct {
	step     time.Duration
	maxFrame time.Duration
	acc      time.Duration
}

// NewClock returns a clock for tickRate ticks per second. Frame deltas above
// maxFrame are clamped so a stall cannot queue an unbounded burst of ticks.
func NewClock(tickRate int, maxFrame time.Duration) *Clock {
	if tickRate <= 0 {
		tickRate = 1
	}
	return &Clock{step: time.Second / time.Duration(tickRate), maxFrame: maxFrame}
}

// Step returns the fixed tick length.
func (c *Clock) Step() time.Duration { return c.step }

// Advance adds a frame delta and returns how many ticks to run.
func (c *Clock) Advance(frame time.Duration) int {
	if frame < 0 {
		frame = 0
	}
	if c.maxFrame > 0 && frame > c.maxFrame {
		frame = c.maxFrame
	}
	c.acc += frame
	n := c.acc / c.step
	c.acc -= n * c.step
	return int(n)
}

// Alpha returns how far into the next tick the accumulator is, in [0, 1),
// for render interpolation.
func (c *Clock) Alpha() float64 {
	return float64(c.acc) / float64(c.step)
}

// Reset drops any accumulated time.
func (c *Clock) Reset() { c.acc = 0 }
