//go:build release

package assert

import "github.com/rotisserie/eris"

var ErrInvariant = eris.New("invariant violated")

func That(bool, string, ...any) {} //nolint:goprintffuncname // it's ok
