// Package rng provides the deterministic random source used by skill-check
// resolution. Every roll consumes exactly one value from the underlying
// source, so a saved (seed, position) pair reproduces the stream exactly.
package rng

import "math/rand"

// RNG wraps math/rand with deterministic position tracking.
// Position increments with every roll, enabling save/restore.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// next draws one raw value. All public rolls go through here so that
// Restore can replay the stream call-for-call.
func (r *RNG) next() int64 {
	r.pos++
	return r.src.Int63()
}

// Chance returns true with probability p (clamped to [0,1]).
func (r *RNG) Chance(p float64) bool {
	v := float64(r.next()) / float64(1<<63)
	return v < p
}

// Between returns a uniform integer in [lo, hi]. If hi <= lo it returns lo
// without consuming a roll.
func (r *RNG) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	span := int64(hi - lo + 1)
	return lo + int(r.next()%span)
}

// Roll returns a uniform integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.Between(1, sides)
}

// Float64 returns a uniform float in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.next()) / float64(1<<63)
}

// Seed returns the seed this RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of rolls made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for i := int64(0); i < position; i++ {
		r.src.Int63()
	}
	r.pos = position
	return r
}
