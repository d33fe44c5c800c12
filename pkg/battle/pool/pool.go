// Package pool owns the live match instances of every kind, their client-visible numbering and
// the per-kind list of instances with open slots.
package pool

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/argus-labs/warband/pkg/assert"
	"github.com/argus-labs/warband/pkg/battle/classify"
	"github.com/argus-labs/warband/pkg/battle/kind"
	"github.com/argus-labs/warband/pkg/battle/selection"
	"github.com/argus-labs/warband/pkg/battle/types"
)

// ErrNoTemplate is returned when a live instance is requested for a kind without a template.
var ErrNoTemplate = eris.New("no template registered for match type")

// TemplateHandle is the instance id reserved for template instances.
const TemplateHandle uint32 = 0

// CandidateSource lists the concrete kinds an aggregate kind can resolve to, with their weights.
type CandidateSource interface {
	Candidates(aggregate types.MatchTypeID) []selection.Candidate[types.MatchTypeID]
}

// Pool is not safe for concurrent use. The owner serializes every call.
type Pool struct {
	registry   *kind.Registry
	rng        *rand.Rand
	candidates CandidateSource

	templates  map[types.MatchTypeID]kind.Match
	live       map[types.MatchTypeID]map[uint32]kind.Match
	clientIDs  *clientIDs
	freeSlots  map[types.MatchTypeID][]kind.Match
	nextHandle uint32
}

// New creates an empty pool. rng drives the aggregate kind draw.
func New(registry *kind.Registry, rng *rand.Rand) *Pool {
	return &Pool{
		registry:  registry,
		rng:       rng,
		templates: make(map[types.MatchTypeID]kind.Match),
		live:      make(map[types.MatchTypeID]map[uint32]kind.Match),
		clientIDs: newClientIDs(),
		freeSlots: make(map[types.MatchTypeID][]kind.Match),
	}
}

// SetCandidateSource sets where aggregate kinds draw their concrete kind from.
func (p *Pool) SetCandidateSource(src CandidateSource) {
	p.candidates = src
}

// RegisterTemplate builds the template instance for a kind. Registering a kind twice is a no-op.
func (p *Pool) RegisterTemplate(tmpl *types.Template) error {
	if _, ok := p.templates[tmpl.ID]; ok {
		return nil
	}
	m, err := p.registry.New(tmpl)
	if err != nil {
		return eris.Wrap(err, "failed to create template instance")
	}
	m.SetInstanceHandle(TemplateHandle)
	p.templates[tmpl.ID] = m
	return nil
}

// Template returns the template instance of a kind.
func (p *Pool) Template(id types.MatchTypeID) (kind.Match, bool) {
	m, ok := p.templates[id]
	return m, ok
}

// TemplateKinds returns the kinds with a registered template, ascending.
func (p *Pool) TemplateKinds() []types.MatchTypeID {
	ids := make([]types.MatchTypeID, 0, len(p.templates))
	for id := range p.templates {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// CreateLiveInstance clones the template of the requested kind, or of a kind drawn from its map
// pool when the requested kind is an aggregate, and registers the clone awaiting players.
func (p *Pool) CreateLiveInstance(
	requested types.MatchTypeID, bracket types.Bracket, teamSize types.TeamSize, rated bool,
) (kind.Match, error) {
	resolved, err := p.resolve(requested)
	if err != nil {
		return nil, err
	}

	tmpl, ok := p.templates[resolved]
	if !ok {
		return nil, eris.Wrapf(ErrNoTemplate, "type %s", resolved)
	}

	p.nextHandle++
	handle := p.nextHandle
	arena := classify.IsArenaKind(resolved)

	m := tmpl.Clone()
	m.SetBracket(bracket)
	m.SetInstanceHandle(handle)
	m.SetClientVisibleID(p.AllocateClientID(resolved, bracket.ID))
	m.ResetToWaiting()
	m.SetTeamSize(teamSize)
	m.SetResolvedKind(resolved)
	m.SetRated(rated)
	m.SetRandomSelection(resolved != requested && !arena)

	byHandle, ok := p.live[resolved]
	if !ok {
		byHandle = make(map[uint32]kind.Match)
		p.live[resolved] = byHandle
	}
	byHandle[handle] = m
	return m, nil
}

func (p *Pool) resolve(requested types.MatchTypeID) (types.MatchTypeID, error) {
	if !classify.IsAggregateKind(requested) {
		return requested, nil
	}
	var candidates []selection.Candidate[types.MatchTypeID]
	if p.candidates != nil {
		candidates = p.candidates.Candidates(requested)
	}
	resolved, err := selection.Pick(p.rng, candidates)
	if err != nil {
		return types.MatchTypeNone, eris.Wrapf(err, "failed to resolve aggregate type %s", requested)
	}
	return resolved, nil
}

// Lookup finds a live instance. Handle 0 never matches. MatchTypeAny searches every kind.
func (p *Pool) Lookup(handle uint32, id types.MatchTypeID) (kind.Match, bool) {
	if handle == TemplateHandle {
		return nil, false
	}
	if id == types.MatchTypeAny {
		for _, byHandle := range p.live {
			if m, ok := byHandle[handle]; ok {
				return m, true
			}
		}
		return nil, false
	}
	m, ok := p.live[id][handle]
	return m, ok
}

// Retire removes a live instance from the pool, its client id and the free-slot list. The caller
// releases the returned match.
func (p *Pool) Retire(id types.MatchTypeID, handle uint32) (kind.Match, bool) {
	m, ok := p.live[id][handle]
	if !ok {
		return nil, false
	}
	delete(p.live[id], handle)
	if len(p.live[id]) == 0 {
		delete(p.live, id)
	}
	p.ReleaseClientID(id, m.Bracket().ID, m.ClientVisibleID())
	p.RemoveFreeSlot(id, handle)
	return m, true
}

// Live returns the live instances of a kind in creation order.
func (p *Pool) Live(id types.MatchTypeID) []kind.Match {
	byHandle := p.live[id]
	out := make([]kind.Match, 0, len(byHandle))
	for _, m := range byHandle {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b kind.Match) int {
		return cmp.Compare(a.InstanceHandle(), b.InstanceHandle())
	})
	return out
}

// LiveKinds returns the kinds with at least one live instance, ascending.
func (p *Pool) LiveKinds() []types.MatchTypeID {
	ids := make([]types.MatchTypeID, 0, len(p.live))
	for id := range p.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Count returns the number of live instances across every kind.
func (p *Pool) Count() int {
	n := 0
	for _, byHandle := range p.live {
		n += len(byHandle)
	}
	return n
}

// AllocateClientID returns the smallest free positive id for (kind, bracket). Arena kinds are
// not numbered and always get 0.
func (p *Pool) AllocateClientID(id types.MatchTypeID, bracket types.BracketID) uint32 {
	if classify.IsArenaKind(id) {
		return 0
	}
	return p.clientIDs.allocate(id, bracket)
}

// ReleaseClientID returns an id to the (kind, bracket) pool. Releasing 0 does nothing.
func (p *Pool) ReleaseClientID(id types.MatchTypeID, bracket types.BracketID, clientID uint32) {
	if clientID == 0 {
		return
	}
	p.clientIDs.release(id, bracket, clientID)
}

// AddFreeSlot puts an instance at the front of its kind's free-slot list.
func (p *Pool) AddFreeSlot(id types.MatchTypeID, m kind.Match) {
	assert.That(m.InstanceHandle() != TemplateHandle, "template instance added to free slots of %s", id)
	p.freeSlots[id] = slices.Insert(p.freeSlots[id], 0, m)
}

// RemoveFreeSlot drops an instance from its kind's free-slot list.
func (p *Pool) RemoveFreeSlot(id types.MatchTypeID, handle uint32) {
	slots := p.freeSlots[id]
	i := slices.IndexFunc(slots, func(m kind.Match) bool { return m.InstanceHandle() == handle })
	if i < 0 {
		return
	}
	p.freeSlots[id] = slices.Delete(slots, i, i+1)
}

// FreeSlots returns the free-slot list of a kind, most recently added first.
func (p *Pool) FreeSlots(id types.MatchTypeID) []kind.Match {
	return slices.Clone(p.freeSlots[id])
}

// Clear releases every live and template instance and empties the pool.
func (p *Pool) Clear() {
	for _, id := range p.LiveKinds() {
		for _, m := range p.Live(id) {
			m.Release()
		}
	}
	for _, m := range p.templates {
		m.Release()
	}
	p.live = make(map[types.MatchTypeID]map[uint32]kind.Match)
	p.templates = make(map[types.MatchTypeID]kind.Match)
	p.freeSlots = make(map[types.MatchTypeID][]kind.Match)
	p.clientIDs = newClientIDs()
}
