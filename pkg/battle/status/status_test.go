package status_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/warband/pkg/battle/kind"
	"github.com/argus-labs/warband/pkg/battle/status"
	"github.com/argus-labs/warband/pkg/battle/types"
)

var joinTime = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newPlayer() *status.Player {
	return &status.Player{
		PlayerID:   uuid.New(),
		PlayerTeam: types.TeamHorde,
		JoinTimes: map[types.QueueTypeID]time.Time{
			types.QueueWS:  joinTime,
			types.Queue3v3: joinTime.Add(time.Minute),
		},
	}
}

func liveMatch(id types.MatchTypeID, teamSize types.TeamSize) *kind.Base {
	m := kind.NewBase(&types.Template{ID: id, MapIDs: []int32{489}, MinLevel: 10, MaxLevel: 85}, kind.Timings{
		Warmup: 2 * time.Minute, WrapUp: time.Minute,
	})
	m.ResetToWaiting()
	m.SetBracket(types.Bracket{ID: 2, MinLevel: 30, MaxLevel: 39})
	m.SetInstanceHandle(40)
	m.SetClientVisibleID(3)
	m.SetTeamSize(teamSize)
	return m
}

func TestBuildHeader(t *testing.T) {
	t.Parallel()

	p := newPlayer()
	m := liveMatch(types.MatchTypeWS, 0)
	m.SetRated(true)

	h := status.BuildHeader(m, p, 7, joinTime, types.TeamSize3v3)
	assert.Equal(t, status.Ticket{RequesterID: p.PlayerID, ID: 7, Type: status.RideBattlegrounds, Time: joinTime}, h.Ticket)
	assert.Equal(t, []types.QueueTypeID{types.QueueWS}, h.QueueIDs)
	assert.Equal(t, uint8(30), h.RangeMin)
	assert.Equal(t, uint8(39), h.RangeMax)
	assert.Equal(t, types.TeamSizeNone, h.TeamSize, "team size is only reported for arenas")
	assert.Equal(t, uint32(3), h.InstanceID)
	assert.True(t, h.RegisteredMatch)
	assert.False(t, h.TournamentRules)

	arena := liveMatch(types.MatchTypeNA, types.TeamSize3v3)
	h = status.BuildHeader(arena, p, 7, joinTime, types.TeamSize3v3)
	assert.Equal(t, types.TeamSize3v3, h.TeamSize)
	assert.Equal(t, []types.QueueTypeID{types.Queue3v3}, h.QueueIDs)
}

func TestQueueOf_RandomSelection(t *testing.T) {
	t.Parallel()

	m := liveMatch(types.MatchTypeWS, 0)
	m.SetRandomSelection(true)
	assert.Equal(t, types.QueueRB, status.QueueOf(m))
}

func TestBuildNone(t *testing.T) {
	t.Parallel()

	p := newPlayer()
	n := status.BuildNone(p, 9, joinTime)
	assert.Equal(t, p.PlayerID, n.Ticket.RequesterID)
	assert.Equal(t, uint32(9), n.Ticket.ID)
	assert.Equal(t, joinTime, n.Ticket.Time)
}

func TestBuildNeedConfirmation(t *testing.T) {
	t.Parallel()

	s := status.BuildNeedConfirmation(liveMatch(types.MatchTypeWS, 0), newPlayer(), 1, joinTime, 80*time.Second, 0)
	assert.Equal(t, int32(489), s.MapID)
	assert.Equal(t, 80*time.Second, s.Timeout)
	assert.Zero(t, s.Role)
}

func TestBuildActive(t *testing.T) {
	t.Parallel()

	m := liveMatch(types.MatchTypeWS, 0)
	require.True(t, m.Begin())
	m.Update(2 * time.Minute)
	m.Update(90 * time.Second)

	s := status.BuildActive(m, newPlayer(), 1, joinTime, 0)
	assert.Equal(t, 90*time.Second, s.StartTimer)
	assert.Equal(t, m.RemainingTime(), s.ShutdownTimer)
	assert.Equal(t, types.TeamHorde, s.ArenaFaction)
	assert.False(t, s.LeftEarly)
	assert.Equal(t, int32(489), s.MapID)
}

func TestBuildQueued(t *testing.T) {
	t.Parallel()

	now := joinTime.Add(95 * time.Second)
	s := status.BuildQueued(liveMatch(types.MatchTypeWS, 0), newPlayer(), 1, joinTime, time.Minute, 0, true, now)
	assert.Equal(t, time.Minute, s.AverageWaitTime)
	assert.Equal(t, 95*time.Second, s.WaitTime)
	assert.True(t, s.AsGroup)
	assert.False(t, s.SuspendedQueue)
	assert.True(t, s.EligibleForMatchmaking)
}

func TestBuildFailed(t *testing.T) {
	t.Parallel()

	p := newPlayer()
	culprit := uuid.New()

	f := status.BuildFailed(liveMatch(types.MatchTypeWS, 0), p, 4, 0, status.JoinFailedJoinTimedOut, &culprit)
	assert.Equal(t, joinTime, f.Ticket.Time, "join time comes from the requester's queue")
	assert.Equal(t, types.QueueWS, f.QueueID)
	assert.Equal(t, status.JoinFailedJoinTimedOut, f.Reason)
	require.NotNil(t, f.ClientID)
	assert.Equal(t, culprit, *f.ClientID)

	f = status.BuildFailed(liveMatch(types.MatchTypeWS, 0), p, 4, 0, status.JoinFailedNotInBattleground, &culprit)
	assert.NotNil(t, f.ClientID)

	f = status.BuildFailed(liveMatch(types.MatchTypeWS, 0), p, 4, 0, status.JoinFailedDeserter, &culprit)
	assert.Nil(t, f.ClientID, "only player specific results carry the culprit")

	f = status.BuildFailed(liveMatch(types.MatchTypeWS, 0), p, 4, 0, status.JoinFailedJoinTimedOut, nil)
	assert.Nil(t, f.ClientID)

	arena := liveMatch(types.MatchTypeRL, types.TeamSize3v3)
	f = status.BuildFailed(arena, p, 4, types.TeamSize3v3, status.JoinFailedGroupTooLarge, nil)
	assert.Equal(t, joinTime.Add(time.Minute), f.Ticket.Time)
	assert.Equal(t, types.Queue3v3, f.QueueID)

	f = status.BuildFailed(liveMatch(types.MatchTypeAB, 0), p, 4, 0, status.JoinFailedDeserter, nil)
	assert.True(t, f.Ticket.Time.IsZero(), "not queued for AB")
}

func TestBuildList(t *testing.T) {
	t.Parallel()

	tmpl := &types.Template{ID: types.MatchTypeAB, MinLevel: 20, MaxLevel: 85}
	bm := uuid.New()

	v := status.BuildList(tmpl, bm, true)
	assert.Equal(t, status.ListView{
		BattlemasterID:    bm,
		MatchType:         types.MatchTypeAB,
		MinLevel:          20,
		MaxLevel:          85,
		HasRandomWinToday: true,
	}, v)

	v = status.BuildList(tmpl, uuid.Nil, false)
	assert.True(t, v.PvPAnywhere)
}
