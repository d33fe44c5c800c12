//go:build !release

// Package assert checks internal invariants. A failed check panics with an error wrapping
// ErrInvariant so the stack reaches Sentry. Checks compile to nothing with the release tag.
package assert

import "github.com/rotisserie/eris"

var ErrInvariant = eris.New("invariant violated")

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if cond {
		return
	}
	panic(eris.Wrapf(ErrInvariant, format, args...))
}
