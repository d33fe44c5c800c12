package kind

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// ErrUnknownKind is returned when no constructor is registered for a template's kind.
var ErrUnknownKind = eris.New("unknown match kind")

// Constructor builds the match object for a template.
type Constructor func(*types.Template) Match

// Registry maps kinds to constructors. It is read-only once built.
type Registry struct {
	constructors map[types.MatchTypeID]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[types.MatchTypeID]Constructor)}
}

// Register sets the constructor for a kind, replacing any earlier one.
func (r *Registry) Register(id types.MatchTypeID, c Constructor) {
	r.constructors[id] = c
}

// New constructs the match object for a template.
func (r *Registry) New(tmpl *types.Template) (Match, error) {
	c, ok := r.constructors[tmpl.ID]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownKind, "type %s", tmpl.ID)
	}
	return c(tmpl), nil
}

// Has reports whether a constructor is registered for the kind.
func (r *Registry) Has(id types.MatchTypeID) bool {
	_, ok := r.constructors[id]
	return ok
}

const (
	battlegroundWarmup = 2 * time.Minute
	arenaWarmup        = time.Minute
	wrapUp             = 2 * time.Minute
	flagCaptureLimit   = 25 * time.Minute
	arenaLimit         = 47 * time.Minute
)

var (
	battleground = Timings{Warmup: battlegroundWarmup, WrapUp: wrapUp}
	flagCapture  = Timings{Warmup: battlegroundWarmup, TimeLimit: flagCaptureLimit, WrapUp: wrapUp}
	arena        = Timings{Warmup: arenaWarmup, TimeLimit: arenaLimit, WrapUp: wrapUp}
)

// DefaultTimings returns the phase lengths used by the default registry for a kind.
func DefaultTimings(id types.MatchTypeID) (Timings, bool) {
	switch id { //nolint:exhaustive // closed set handled below
	case types.MatchTypeWS, types.MatchTypeTP:
		return flagCapture, true
	case types.MatchTypeAV, types.MatchTypeAB, types.MatchTypeEY, types.MatchTypeSA,
		types.MatchTypeIC, types.MatchTypeBFG, types.MatchTypeRB:
		return battleground, true
	case types.MatchTypeAA, types.MatchTypeNA, types.MatchTypeBE, types.MatchTypeRL,
		types.MatchTypeDS, types.MatchTypeRV:
		return arena, true
	default:
		return Timings{}, false
	}
}

// DefaultRegistry returns a registry holding the base match for every known kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, id := range []types.MatchTypeID{
		types.MatchTypeAV, types.MatchTypeWS, types.MatchTypeAB, types.MatchTypeNA,
		types.MatchTypeBE, types.MatchTypeAA, types.MatchTypeEY, types.MatchTypeRL,
		types.MatchTypeSA, types.MatchTypeDS, types.MatchTypeRV, types.MatchTypeIC,
		types.MatchTypeRB, types.MatchTypeTP, types.MatchTypeBFG,
	} {
		timings, _ := DefaultTimings(id)
		r.Register(id, func(tmpl *types.Template) Match { return NewBase(tmpl, timings) })
	}
	return r
}
