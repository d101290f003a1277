// Package chance provides the weighted sampler and probability helpers
// used by every stochastic decision in the simulation.
package chance

import (
	"math/rand"
	"sync"
)

// Source wraps a seeded rand.Rand behind a mutex so the tick loop and
// host request handlers can draw from it concurrently.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a deterministic source from a seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns true with probability p. Values outside [0,1] are clamped.
func (s *Source) Roll(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// Float returns a random float64 in [0, 1).
func (s *Source) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Between returns a random float64 in [lo, hi).
func (s *Source) Between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

// IntN returns a random int in [0, n). n <= 0 returns 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Weighted is one candidate in a weighted draw.
type Weighted struct {
	Weight float64
}

// WeightedPick selects an index proportionally to the weights.
// Non-positive weights are ignored. Returns ok=false when nothing is
// selectable, so callers can fall back to a default choice.
func (s *Source) WeightedPick(weights []float64) (int, bool) {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, false
	}

	s.mu.Lock()
	target := s.rng.Float64() * total
	s.mu.Unlock()

	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return i, true
		}
	}
	// Floating point residue: return the last positive entry.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i, true
		}
	}
	return 0, false
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
