// Package prng implements xoshiro256** as the generator backing the
// @math.random / @math.seed builtins. It is seeded via SplitMix64, the
// same two-stage construction used by the reference C implementation.
package prng

import (
	"math/bits"
	"time"
)

// Xoshiro256SS is a xoshiro256** generator. The zero value is not seeded;
// use New or call Seed before Next.
type Xoshiro256SS struct {
	state [4]uint64
}

// New returns a generator seeded from the given 64-bit seed.
func New(seed uint64) *Xoshiro256SS {
	r := &Xoshiro256SS{}
	r.Seed(seed)
	return r
}

// NewFromTime seeds the generator from the current wall clock, for VM
// startup when the program never calls @math.seed explicitly.
func NewFromTime() *Xoshiro256SS {
	return New(uint64(time.Now().UnixNano()))
}

// Seed reseeds the generator using SplitMix64 to spread a single 64-bit
// seed across the 256 bits of internal state.
func (r *Xoshiro256SS) Seed(seed uint64) {
	for i := 0; i < 4; i++ {
		seed += 0x9E3779B97F4A7C15
		z := seed
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		r.state[i] = z ^ (z >> 31)
	}
}

// Next returns the next raw 64-bit output.
func (r *Xoshiro256SS) Next() uint64 {
	s := &r.state
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]
	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// Float64 returns a uniform double in [0, 1), matching the reference
// implementation's 53-bit mantissa extraction.
func (r *Xoshiro256SS) Float64() float64 {
	return float64(r.Next()>>11) * 0x1p-53
}
