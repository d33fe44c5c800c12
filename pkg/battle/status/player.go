package status

import (
	"time"

	"github.com/google/uuid"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// Player is a plain Requester.
type Player struct {
	PlayerID   uuid.UUID
	PlayerTeam types.Team
	JoinTimes  map[types.QueueTypeID]time.Time
}

var _ Requester = (*Player)(nil)

func (p *Player) ID() uuid.UUID    { return p.PlayerID }
func (p *Player) Team() types.Team { return p.PlayerTeam }

func (p *Player) QueueJoinTime(q types.QueueTypeID) time.Time {
	return p.JoinTimes[q]
}
