package matching

import (
	"math/rand/v2"
)

// MaxJitter is the exclusive upper bound of the success probability jitter.
const MaxJitter = 10.0

// JitterSource yields the random component added to a total score to produce
// the success probability. Jitter is called concurrently with the candidate's
// input position and must return a value in [0, MaxJitter).
type JitterSource interface {
	Jitter(index int) float64
}

// RandomJitter draws from the runtime's per-goroutine generator, so parallel
// scoring tasks do not contend on a shared source.
type RandomJitter struct{}

// Jitter implements JitterSource.
func (RandomJitter) Jitter(int) float64 {
	return rand.Float64() * MaxJitter
}

// SeededJitter derives an independent generator per candidate position from a
// fixed seed, making results reproducible regardless of scheduling order.
type SeededJitter struct {
	Seed uint64
}

// Jitter implements JitterSource.
func (s SeededJitter) Jitter(index int) float64 {
	r := rand.New(rand.NewPCG(s.Seed, uint64(index)))
	return r.Float64() * MaxJitter
}

// FixedJitter always returns the same value, clamped to [0, MaxJitter).
type FixedJitter float64

// Jitter implements JitterSource.
func (f FixedJitter) Jitter(int) float64 {
	v := float64(f)
	if v < 0 {
		return 0
	}
	if v >= MaxJitter {
		return MaxJitter - 1e-9
	}
	return v
}

// JitterFromSeed returns a SeededJitter when seed is set and RandomJitter otherwise.
func JitterFromSeed(seed *uint64) JitterSource {
	if seed == nil {
		return RandomJitter{}
	}
	return SeededJitter{Seed: *seed}
}
