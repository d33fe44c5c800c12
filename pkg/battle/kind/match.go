// Package kind holds the match lifecycle contract, the base match every kind builds on, and the
// registry that turns a template into its kind's match object.
package kind

import (
	"time"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// Match is the lifecycle contract between the orchestration layer and a match simulation.
type Match interface {
	// Update advances the match by diff.
	Update(diff time.Duration)
	// IsComplete reports whether the match can be torn down.
	IsComplete() bool
	// ResetToWaiting clears the runtime state and moves the match to StatusAwaitingPlayers.
	ResetToWaiting()

	SetBracket(types.Bracket)
	SetInstanceHandle(uint32)
	SetClientVisibleID(uint32)
	SetTeamSize(types.TeamSize)
	SetResolvedKind(types.MatchTypeID)
	SetRated(bool)
	SetRandomSelection(bool)
	SetHolidayActive(bool)

	// Clone returns an independent copy sharing only the immutable template.
	Clone() Match
	// Release frees resources held by the match. The match is not used afterwards.
	Release()

	Template() *types.Template
	Kind() types.MatchTypeID
	ResolvedKind() types.MatchTypeID
	InstanceHandle() uint32
	ClientVisibleID() uint32
	Bracket() types.Bracket
	TeamSize() types.TeamSize
	IsRated() bool
	IsRandomSelection() bool
	IsHolidayActive() bool
	Status() types.Status
	ElapsedTime() time.Duration
	RemainingTime() time.Duration
	MapID() int32
}

// Timings are the phase lengths of a kind. A zero TimeLimit lets the match run until Finish.
type Timings struct {
	Warmup    time.Duration
	TimeLimit time.Duration
	WrapUp    time.Duration
}

// Base implements Match with a timer driven state machine:
// AwaitingPlayers -> WarmupCountdown -> InProgress -> WrapUp -> Finished.
type Base struct {
	template *types.Template
	timings  Timings

	resolved  types.MatchTypeID
	handle    uint32
	clientID  uint32
	bracket   types.Bracket
	teamSize  types.TeamSize
	rated     bool
	random    bool
	holiday   bool
	status    types.Status
	elapsed   time.Duration
	remaining time.Duration
	winner    *types.Team
	released  bool
}

var _ Match = (*Base)(nil)

// NewBase creates a match for a template in StatusNone. Template instances stay in that state.
func NewBase(tmpl *types.Template, timings Timings) *Base {
	return &Base{
		template: tmpl,
		timings:  timings,
		resolved: tmpl.ID,
	}
}

func (m *Base) Update(diff time.Duration) {
	switch m.status { //nolint:exhaustive // other states do not advance on time
	case types.StatusWarmupCountdown:
		m.remaining -= diff
		if m.remaining <= 0 {
			m.status = types.StatusInProgress
			m.elapsed = 0
			m.remaining = m.timings.TimeLimit
		}
	case types.StatusInProgress:
		m.elapsed += diff
		if m.timings.TimeLimit > 0 {
			m.remaining -= diff
			if m.remaining <= 0 {
				m.enterWrapUp(nil)
			}
		}
	case types.StatusWrapUp:
		m.remaining -= diff
		if m.remaining <= 0 {
			m.remaining = 0
			m.status = types.StatusFinished
		}
	}
}

// Begin starts the warmup countdown. It reports false unless the match was awaiting players.
func (m *Base) Begin() bool {
	if m.status != types.StatusAwaitingPlayers {
		return false
	}
	m.status = types.StatusWarmupCountdown
	m.remaining = m.timings.Warmup
	return true
}

// Finish ends a running match with a winner. It reports false unless the match was in progress.
func (m *Base) Finish(winner types.Team) bool {
	if m.status != types.StatusInProgress {
		return false
	}
	m.enterWrapUp(&winner)
	return true
}

func (m *Base) enterWrapUp(winner *types.Team) {
	m.status = types.StatusWrapUp
	m.remaining = m.timings.WrapUp
	m.winner = winner
}

// Winner returns the winning side once the match has been decided.
func (m *Base) Winner() (types.Team, bool) {
	if m.winner == nil {
		return 0, false
	}
	return *m.winner, true
}

func (m *Base) IsComplete() bool {
	return m.status.IsTerminal()
}

func (m *Base) ResetToWaiting() {
	m.status = types.StatusAwaitingPlayers
	m.elapsed = 0
	m.remaining = 0
	m.winner = nil
}

func (m *Base) SetBracket(b types.Bracket)           { m.bracket = b }
func (m *Base) SetInstanceHandle(h uint32)           { m.handle = h }
func (m *Base) SetClientVisibleID(id uint32)         { m.clientID = id }
func (m *Base) SetTeamSize(size types.TeamSize)      { m.teamSize = size }
func (m *Base) SetResolvedKind(id types.MatchTypeID) { m.resolved = id }
func (m *Base) SetRated(rated bool)                  { m.rated = rated }
func (m *Base) SetRandomSelection(random bool)       { m.random = random }
func (m *Base) SetHolidayActive(active bool)         { m.holiday = active }

func (m *Base) Clone() Match {
	c := *m
	c.winner = nil
	c.released = false
	return &c
}

func (m *Base) Release() {
	m.released = true
}

// Released reports whether Release has been called.
func (m *Base) Released() bool { return m.released }

func (m *Base) Template() *types.Template       { return m.template }
func (m *Base) Kind() types.MatchTypeID         { return m.template.ID }
func (m *Base) ResolvedKind() types.MatchTypeID { return m.resolved }
func (m *Base) InstanceHandle() uint32          { return m.handle }
func (m *Base) ClientVisibleID() uint32         { return m.clientID }
func (m *Base) Bracket() types.Bracket          { return m.bracket }
func (m *Base) TeamSize() types.TeamSize        { return m.teamSize }
func (m *Base) IsRated() bool                   { return m.rated }
func (m *Base) IsRandomSelection() bool         { return m.random }
func (m *Base) IsHolidayActive() bool           { return m.holiday }
func (m *Base) Status() types.Status            { return m.status }
func (m *Base) ElapsedTime() time.Duration      { return m.elapsed }
func (m *Base) RemainingTime() time.Duration    { return m.remaining }

// MapID returns the bracket's map when set, otherwise the template's first map, otherwise -1.
func (m *Base) MapID() int32 {
	if m.bracket.MapID != 0 {
		return m.bracket.MapID
	}
	if len(m.template.MapIDs) > 0 {
		return m.template.MapIDs[0]
	}
	return -1
}
