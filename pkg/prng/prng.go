// Package prng provides a seedable 32-bit pseudo-random generator whose output
// is a pure function of its seed. Simulation code that affects replicated or
// replayed state draws from it instead of math/rand.
package prng

import "math"

// Rand is a Mulberry32 generator. The zero value is valid and equivalent to New(0).
// A Rand is owned by one simulation session and is not safe for concurrent use.
type Rand struct {
	state uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Seed resets the generator. Sessions call it exactly once per run or replay.
func (r *Rand) Seed(seed uint32) {
	r.state = seed
}

// State returns the internal state, for digests and snapshots.
func (r *Rand) State() uint32 {
	return r.state
}

// Uint32 advances the generator and returns 32 random bits.
func (r *Rand) Uint32() uint32 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Next returns a float32 in [0, 1).
// Only the top 24 bits are used so the conversion is exact and can never round to 1.
func (r *Rand) Next() float32 {
	return float32(r.Uint32()>>8) * (1.0 / (1 << 24))
}

// Range returns a float32 in [lo, hi). It returns lo when hi <= lo.
// One draw is taken either way.
func (r *Rand) Range(lo, hi float32) float32 {
	v := lo + float32((hi-lo)*r.Next())
	if hi <= lo {
		return lo
	}
	if v >= hi {
		// The sum rounded up to hi.
		return math.Nextafter32(hi, lo)
	}
	return v
}

// Intn returns an int in [0, n). It returns 0 when n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint32() % uint32(n))
}
