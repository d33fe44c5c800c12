// Package status builds the snapshots sent to a player about one match instance.
// Builders read the instance and the requester and never modify either.
package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/argus-labs/warband/pkg/battle/classify"
	"github.com/argus-labs/warband/pkg/battle/kind"
	"github.com/argus-labs/warband/pkg/battle/types"
)

// RideType tells the client which system a ticket belongs to.
type RideType uint8

const RideBattlegrounds RideType = 2

// Requester is the player a snapshot is built for.
type Requester interface {
	ID() uuid.UUID
	Team() types.Team
	// QueueJoinTime returns when the player joined a queue, zero when not queued.
	QueueJoinTime(types.QueueTypeID) time.Time
}

// Ticket identifies one queue entry of a requester.
type Ticket struct {
	RequesterID uuid.UUID `json:"requester_id"`
	ID          uint32    `json:"id"`
	Type        RideType  `json:"type"`
	Time        time.Time `json:"time"`
}

// Header is the part shared by every instance snapshot.
type Header struct {
	Ticket          Ticket              `json:"ticket"`
	QueueIDs        []types.QueueTypeID `json:"queue_ids"`
	RangeMin        uint8               `json:"range_min"`
	RangeMax        uint8               `json:"range_max"`
	TeamSize        types.TeamSize      `json:"team_size"`
	InstanceID      uint32              `json:"instance_id"`
	RegisteredMatch bool                `json:"registered_match"`
	TournamentRules bool                `json:"tournament_rules"`
}

// None tells the client a ticket is no longer tracked.
type None struct {
	Ticket Ticket `json:"ticket"`
}

// NeedConfirmation invites the player to enter an instance.
type NeedConfirmation struct {
	Header  Header        `json:"header"`
	MapID   int32         `json:"map_id"`
	Timeout time.Duration `json:"timeout"`
	Role    uint8         `json:"role"`
}

// Active describes the instance the player is in.
type Active struct {
	Header        Header        `json:"header"`
	ShutdownTimer time.Duration `json:"shutdown_timer"`
	ArenaFaction  types.Team    `json:"arena_faction"`
	LeftEarly     bool          `json:"left_early"`
	StartTimer    time.Duration `json:"start_timer"`
	MapID         int32         `json:"map_id"`
}

// Queued describes a waiting ticket.
type Queued struct {
	Header                 Header        `json:"header"`
	AverageWaitTime        time.Duration `json:"average_wait_time"`
	AsGroup                bool          `json:"as_group"`
	SuspendedQueue         bool          `json:"suspended_queue"`
	EligibleForMatchmaking bool          `json:"eligible_for_matchmaking"`
	WaitTime               time.Duration `json:"wait_time"`
}

// JoinResult is the reason a join attempt failed.
type JoinResult int8

const (
	JoinOK JoinResult = iota
	JoinFailedDeserter
	JoinFailedTooManyQueues
	JoinFailedNotInBattleground
	JoinFailedJoinTimedOut
	JoinFailedGroupTooLarge
	JoinFailedMixedFaction
	JoinFailedRangeMismatch
)

// Failed reports a rejected join.
type Failed struct {
	Ticket   Ticket            `json:"ticket"`
	QueueID  types.QueueTypeID `json:"queue_id"`
	Reason   JoinResult        `json:"reason"`
	ClientID *uuid.UUID        `json:"client_id,omitempty"`
}

// ListView is the match list a battlemaster opens.
type ListView struct {
	BattlemasterID    uuid.UUID         `json:"battlemaster_id"`
	MatchType         types.MatchTypeID `json:"match_type"`
	MinLevel          uint8             `json:"min_level"`
	MaxLevel          uint8             `json:"max_level"`
	PvPAnywhere       bool              `json:"pvp_anywhere"`
	HasRandomWinToday bool              `json:"has_random_win_today"`
}

// QueueOf returns the queue an instance was filled from.
func QueueOf(m kind.Match) types.QueueTypeID {
	if m.IsRandomSelection() {
		return types.QueueRB
	}
	return classify.QueueTypeOf(m.Kind(), m.TeamSize())
}

func ticket(r Requester, id uint32, joinTime time.Time) Ticket {
	return Ticket{RequesterID: r.ID(), ID: id, Type: RideBattlegrounds, Time: joinTime}
}

// BuildHeader builds the shared header. teamSize is reported for arenas only.
func BuildHeader(m kind.Match, r Requester, ticketID uint32, joinTime time.Time, teamSize types.TeamSize) Header {
	h := Header{
		Ticket:          ticket(r, ticketID, joinTime),
		QueueIDs:        []types.QueueTypeID{QueueOf(m)},
		RangeMin:        m.Bracket().MinLevel,
		RangeMax:        m.Bracket().MaxLevel,
		InstanceID:      m.ClientVisibleID(),
		RegisteredMatch: m.IsRated(),
	}
	if classify.IsArenaKind(m.Kind()) {
		h.TeamSize = teamSize
	}
	return h
}

func BuildNone(r Requester, ticketID uint32, joinTime time.Time) None {
	return None{Ticket: ticket(r, ticketID, joinTime)}
}

func BuildNeedConfirmation(
	m kind.Match, r Requester, ticketID uint32, joinTime time.Time, timeout time.Duration, teamSize types.TeamSize,
) NeedConfirmation {
	return NeedConfirmation{
		Header:  BuildHeader(m, r, ticketID, joinTime, teamSize),
		MapID:   m.MapID(),
		Timeout: timeout,
	}
}

func BuildActive(m kind.Match, r Requester, ticketID uint32, joinTime time.Time, teamSize types.TeamSize) Active {
	return Active{
		Header:        BuildHeader(m, r, ticketID, joinTime, teamSize),
		ShutdownTimer: m.RemainingTime(),
		ArenaFaction:  r.Team(),
		StartTimer:    m.ElapsedTime(),
		MapID:         m.MapID(),
	}
}

// BuildQueued reports a waiting ticket. now is the time the wait is measured against.
func BuildQueued(
	m kind.Match, r Requester, ticketID uint32, joinTime time.Time, avgWait time.Duration,
	teamSize types.TeamSize, asGroup bool, now time.Time,
) Queued {
	return Queued{
		Header:                 BuildHeader(m, r, ticketID, joinTime, teamSize),
		AverageWaitTime:        avgWait,
		AsGroup:                asGroup,
		EligibleForMatchmaking: true,
		WaitTime:               now.Sub(joinTime),
	}
}

// BuildFailed reports a rejected join. errorID names the player at fault and is only carried for
// results that concern a specific player.
func BuildFailed(
	m kind.Match, r Requester, ticketID uint32, teamSize types.TeamSize, result JoinResult, errorID *uuid.UUID,
) Failed {
	joinTime := r.QueueJoinTime(classify.QueueTypeOf(m.Kind(), teamSize))
	f := Failed{
		Ticket:  ticket(r, ticketID, joinTime),
		QueueID: QueueOf(m),
		Reason:  result,
	}
	if errorID != nil && (result == JoinFailedNotInBattleground || result == JoinFailedJoinTimedOut) {
		id := *errorID
		f.ClientID = &id
	}
	return f
}

// BuildList builds the list view of a template. A nil battlemaster id means the list was opened
// without a battlemaster.
func BuildList(tmpl *types.Template, battlemaster uuid.UUID, hasRandomWinToday bool) ListView {
	return ListView{
		BattlemasterID:    battlemaster,
		MatchType:         tmpl.ID,
		MinLevel:          tmpl.MinLevel,
		MaxLevel:          tmpl.MaxLevel,
		PvPAnywhere:       battlemaster == uuid.Nil,
		HasRandomWinToday: hasRandomWinToday,
	}
}
