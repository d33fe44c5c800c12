package pool

import (
	"github.com/kelindar/bitmap"

	"github.com/argus-labs/warband/pkg/battle/types"
)

type clientIDKey struct {
	kind    types.MatchTypeID
	bracket types.BracketID
}

// clientIDs tracks the ids in use per (kind, bracket). Bit k-1 is set when id k is taken.
type clientIDs struct {
	inUse map[clientIDKey]*bitmap.Bitmap
}

func newClientIDs() *clientIDs {
	return &clientIDs{inUse: make(map[clientIDKey]*bitmap.Bitmap)}
}

func (c *clientIDs) allocate(id types.MatchTypeID, bracket types.BracketID) uint32 {
	key := clientIDKey{kind: id, bracket: bracket}
	bm, ok := c.inUse[key]
	if !ok {
		bm = &bitmap.Bitmap{}
		c.inUse[key] = bm
	}
	var bit uint32
	for bm.Contains(bit) {
		bit++
	}
	bm.Set(bit)
	return bit + 1
}

func (c *clientIDs) release(id types.MatchTypeID, bracket types.BracketID, clientID uint32) {
	bm, ok := c.inUse[clientIDKey{kind: id, bracket: bracket}]
	if !ok {
		return
	}
	bm.Remove(clientID - 1)
}

func (c *clientIDs) count(id types.MatchTypeID, bracket types.BracketID) int {
	bm, ok := c.inUse[clientIDKey{kind: id, bracket: bracket}]
	if !ok {
		return 0
	}
	return bm.Count()
}
