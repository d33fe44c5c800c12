// Package selection draws one candidate with probability proportional to its weight.
package selection

import (
	"math/rand/v2"

	"github.com/rotisserie/eris"
)

// ErrNoCandidate is returned when no candidate has a positive weight.
var ErrNoCandidate = eris.New("no candidate with positive weight")

// Candidate is a selectable value with its relative weight. Weights at or below zero exclude it.
type Candidate[T any] struct {
	Value  T
	Weight float64
}

// Pick draws one candidate value. rng must not be nil.
func Pick[T any](rng *rand.Rand, candidates []Candidate[T]) (T, error) {
	var zero T

	var total float64
	for _, c := range candidates {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return zero, eris.Wrapf(ErrNoCandidate, "%d candidates", len(candidates))
	}

	r := rng.Float64() * total
	last := -1
	for i, c := range candidates {
		if c.Weight <= 0 {
			continue
		}
		last = i
		if r < c.Weight {
			return c.Value, nil
		}
		r -= c.Weight
	}
	// Floating point drift can leave r a hair above the final weight.
	return candidates[last].Value, nil
}
