// Package types holds the identifiers and value types shared by the battle packages.
package types

import "strconv"

// MatchTypeID identifies a match kind. The numbering follows the shared game data tables.
type MatchTypeID uint32

const (
	MatchTypeNone MatchTypeID = 0
	MatchTypeAV   MatchTypeID = 1   // Alterac Valley
	MatchTypeWS   MatchTypeID = 2   // Warsong Gulch
	MatchTypeAB   MatchTypeID = 3   // Arathi Basin
	MatchTypeNA   MatchTypeID = 4   // Nagrand Arena
	MatchTypeBE   MatchTypeID = 5   // Blade's Edge Arena
	MatchTypeAA   MatchTypeID = 6   // any arena
	MatchTypeEY   MatchTypeID = 7   // Eye of the Storm
	MatchTypeRL   MatchTypeID = 8   // Ruins of Lordaeron
	MatchTypeSA   MatchTypeID = 9   // Strand of the Ancients
	MatchTypeDS   MatchTypeID = 10  // Dalaran Sewers
	MatchTypeRV   MatchTypeID = 11  // Ring of Valor
	MatchTypeIC   MatchTypeID = 30  // Isle of Conquest
	MatchTypeRB   MatchTypeID = 32  // random battleground
	MatchTypeTP   MatchTypeID = 108 // Twin Peaks
	MatchTypeBFG  MatchTypeID = 120 // Battle for Gilneas

	// MatchTypeAny is accepted by lookups that should search every kind.
	MatchTypeAny = MatchTypeNone
)

var matchTypeNames = map[MatchTypeID]string{
	MatchTypeAV:  "AV",
	MatchTypeWS:  "WS",
	MatchTypeAB:  "AB",
	MatchTypeNA:  "NA",
	MatchTypeBE:  "BE",
	MatchTypeAA:  "AA",
	MatchTypeEY:  "EY",
	MatchTypeRL:  "RL",
	MatchTypeSA:  "SA",
	MatchTypeDS:  "DS",
	MatchTypeRV:  "RV",
	MatchTypeIC:  "IC",
	MatchTypeRB:  "RB",
	MatchTypeTP:  "TP",
	MatchTypeBFG: "BFG",
}

func (t MatchTypeID) String() string {
	if name, ok := matchTypeNames[t]; ok {
		return name
	}
	return "match_type(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// QueueTypeID identifies a matchmaking queue.
type QueueTypeID uint8

const (
	QueueNone QueueTypeID = iota
	QueueAV
	QueueWS
	QueueAB
	QueueEY
	QueueSA
	QueueIC
	QueueTP
	QueueBFG
	QueueRB
	Queue2v2
	Queue3v3
	Queue5v5

	MaxQueueTypes = int(Queue5v5) + 1
)

var queueNames = [MaxQueueTypes]string{
	"none", "AV", "WS", "AB", "EY", "SA", "IC", "TP", "BFG", "RB", "2v2", "3v3", "5v5",
}

func (q QueueTypeID) String() string {
	if int(q) < MaxQueueTypes {
		return queueNames[q]
	}
	return "queue(" + strconv.Itoa(int(q)) + ")"
}

// TeamSize is the per-side player count of an arena match. Zero means "not an arena".
type TeamSize uint8

const (
	TeamSizeNone TeamSize = 0
	TeamSize2v2  TeamSize = 2
	TeamSize3v3  TeamSize = 3
	TeamSize5v5  TeamSize = 5
)

// BracketID partitions queues and instances by level range.
type BracketID uint8

const (
	FirstBracket BracketID = 0
	MaxBrackets            = 16
)

// Bracket is the level range entry an instance is created for.
type Bracket struct {
	ID       BracketID
	MapID    int32
	MinLevel uint8
	MaxLevel uint8
}

// HolidayID identifies a recurring world event.
type HolidayID uint32

const (
	HolidayNone          HolidayID = 0
	HolidayCallToArmsAV  HolidayID = 283
	HolidayCallToArmsWS  HolidayID = 284
	HolidayCallToArmsAB  HolidayID = 285
	HolidayCallToArmsEY  HolidayID = 353
	HolidayCallToArmsSA  HolidayID = 400
	HolidayCallToArmsIC  HolidayID = 420
	HolidayCallToArmsTP  HolidayID = 435
	HolidayCallToArmsBFG HolidayID = 436
)

// Team is one of the two sides of a match.
type Team uint8

const (
	TeamAlliance Team = iota
	TeamHorde

	TeamCount = 2
)

func (t Team) String() string {
	if t == TeamHorde {
		return "horde"
	}
	return "alliance"
}
