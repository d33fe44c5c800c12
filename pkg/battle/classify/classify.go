// Package classify maps between match kinds, team sizes, queue identities and holiday events.
// Every function is total: combinations outside the tables yield the matching "none" value.
package classify

import "github.com/argus-labs/warband/pkg/battle/types"

var dedicatedQueues = map[types.MatchTypeID]types.QueueTypeID{
	types.MatchTypeAV:  types.QueueAV,
	types.MatchTypeWS:  types.QueueWS,
	types.MatchTypeAB:  types.QueueAB,
	types.MatchTypeEY:  types.QueueEY,
	types.MatchTypeSA:  types.QueueSA,
	types.MatchTypeIC:  types.QueueIC,
	types.MatchTypeTP:  types.QueueTP,
	types.MatchTypeBFG: types.QueueBFG,
	types.MatchTypeRB:  types.QueueRB,
}

var queueOwners = map[types.QueueTypeID]types.MatchTypeID{
	types.QueueAV:  types.MatchTypeAV,
	types.QueueWS:  types.MatchTypeWS,
	types.QueueAB:  types.MatchTypeAB,
	types.QueueEY:  types.MatchTypeEY,
	types.QueueSA:  types.MatchTypeSA,
	types.QueueIC:  types.MatchTypeIC,
	types.QueueTP:  types.MatchTypeTP,
	types.QueueBFG: types.MatchTypeBFG,
	types.QueueRB:  types.MatchTypeRB,
	types.Queue2v2: types.MatchTypeAA,
	types.Queue3v3: types.MatchTypeAA,
	types.Queue5v5: types.MatchTypeAA,
}

var holidays = map[types.MatchTypeID]types.HolidayID{
	types.MatchTypeAV:  types.HolidayCallToArmsAV,
	types.MatchTypeEY:  types.HolidayCallToArmsEY,
	types.MatchTypeWS:  types.HolidayCallToArmsWS,
	types.MatchTypeSA:  types.HolidayCallToArmsSA,
	types.MatchTypeAB:  types.HolidayCallToArmsAB,
	types.MatchTypeIC:  types.HolidayCallToArmsIC,
	types.MatchTypeTP:  types.HolidayCallToArmsTP,
	types.MatchTypeBFG: types.HolidayCallToArmsBFG,
}

var holidayKinds = func() map[types.HolidayID]types.MatchTypeID {
	m := make(map[types.HolidayID]types.MatchTypeID, len(holidays))
	for kind, holiday := range holidays {
		m[holiday] = kind
	}
	return m
}()

var arenaQueues = [...]types.QueueTypeID{types.Queue2v2, types.Queue3v3, types.Queue5v5}

// IsArenaKind reports whether the kind is an arena map or the arena aggregate.
func IsArenaKind(id types.MatchTypeID) bool {
	switch id { //nolint:exhaustive // membership test
	case types.MatchTypeAA, types.MatchTypeBE, types.MatchTypeNA,
		types.MatchTypeDS, types.MatchTypeRV, types.MatchTypeRL:
		return true
	default:
		return false
	}
}

// IsAggregateKind reports whether the kind stands for a random pick among concrete kinds.
func IsAggregateKind(id types.MatchTypeID) bool {
	return id == types.MatchTypeAA || id == types.MatchTypeRB
}

// QueueTypeOf returns the queue a (kind, team size) pair is matched in.
func QueueTypeOf(id types.MatchTypeID, size types.TeamSize) types.QueueTypeID {
	if q, ok := dedicatedQueues[id]; ok {
		return q
	}
	if !IsArenaKind(id) {
		return types.QueueNone
	}
	switch size { //nolint:exhaustive // other sizes are invalid
	case types.TeamSize2v2:
		return types.Queue2v2
	case types.TeamSize3v3:
		return types.Queue3v3
	case types.TeamSize5v5:
		return types.Queue5v5
	default:
		return types.QueueNone
	}
}

// MatchTypeOf returns the kind that owns a queue. Arena queues belong to the arena aggregate.
func MatchTypeOf(q types.QueueTypeID) types.MatchTypeID {
	return queueOwners[q]
}

// TeamSizeOf returns the team size of an arena queue and zero for every other queue.
func TeamSizeOf(q types.QueueTypeID) types.TeamSize {
	switch q { //nolint:exhaustive // non-arena queues have no team size
	case types.Queue2v2:
		return types.TeamSize2v2
	case types.Queue3v3:
		return types.TeamSize3v3
	case types.Queue5v5:
		return types.TeamSize5v5
	default:
		return types.TeamSizeNone
	}
}

// ArenaQueues lists the arena queues in ascending team size.
func ArenaQueues() []types.QueueTypeID {
	return arenaQueues[:]
}

// HolidayOf returns the call-to-arms event linked to a kind.
func HolidayOf(id types.MatchTypeID) types.HolidayID {
	return holidays[id]
}

// KindOfHoliday is the inverse of HolidayOf.
func KindOfHoliday(h types.HolidayID) types.MatchTypeID {
	return holidayKinds[h]
}

// HolidayOracle answers whether a world event is currently running.
type HolidayOracle interface {
	IsHolidayActive(types.HolidayID) bool
}

// IsWeekendActive reports whether the kind's call-to-arms event is running.
func IsWeekendActive(oracle HolidayOracle, id types.MatchTypeID) bool {
	h := HolidayOf(id)
	if h == types.HolidayNone || oracle == nil {
		return false
	}
	return oracle.IsHolidayActive(h)
}
