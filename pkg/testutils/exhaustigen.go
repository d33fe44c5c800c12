package testutils

import "github.com/argus-labs/warband/pkg/assert"

// Gen walks every combination of the choices made inside a `for !g.Done()` loop. Each call to
// Intn records a digit with its own bound; Done advances the rightmost digit that is still below
// its bound and forgets every digit after it, so the next iteration re-records them from zero.
//
// See: <https://matklad.github.io/2021/11/07/generate-all-the-things.html>
type Gen struct {
	started bool
	digits  []digit
	pos     int
}

type digit struct {
	value, bound int
}

// NewGen creates a new exhaustive generator.
func NewGen() *Gen {
	return &Gen{}
}

// Done reports whether every combination has been produced.
func (g *Gen) Done() bool {
	if !g.started {
		g.started = true
		return false
	}
	for i := len(g.digits) - 1; i >= 0; i-- {
		if g.digits[i].value < g.digits[i].bound {
			g.digits[i].value++
			g.digits = g.digits[:i+1]
			g.pos = 0
			return false
		}
	}
	return true
}

// Intn returns an int in range [0, bound] (inclusive).
func (g *Gen) Intn(bound int) int {
	assert.That(bound >= 0, "exhaustigen: negative bound %d", bound)
	if g.pos == len(g.digits) {
		g.digits = append(g.digits, digit{})
	}
	g.digits[g.pos].bound = bound
	g.pos++
	return g.digits[g.pos-1].value
}

// Bool returns an exhaustive boolean value.
func (g *Gen) Bool() bool {
	return g.Intn(1) == 1
}

// Pick returns an element from the slice.
func Pick[T any](g *Gen, slice []T) T {
	assert.That(len(slice) > 0, "exhaustigen: empty slice")
	return slice[g.Intn(len(slice)-1)]
}
