// Package schedule holds the deduplicating list of queue updates deferred to the next tick.
package schedule

import (
	"slices"
	"sync"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// Entry asks for one queue bracket to be reconsidered. A positive RatingFloor marks a rated pass.
type Entry struct {
	RatingFloor uint32
	TeamSize    types.TeamSize
	QueueType   types.QueueTypeID
	MatchType   types.MatchTypeID
	Bracket     types.BracketID
}

// Rated reports whether the entry asks for a rated pass.
func (e Entry) Rated() bool {
	return e.RatingFloor > 0
}

// Scheduler collects entries between ticks. The pending list never holds two equal entries.
type Scheduler struct {
	mu      sync.Mutex
	pending []Entry
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Schedule adds an entry unless an equal one is already pending. It reports whether it was added.
func (s *Scheduler) Schedule(e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.pending, e) {
		return false
	}
	s.pending = append(s.pending, e)
	return true
}

// Drain takes every pending entry in insertion order. Entries scheduled afterwards land in the
// next batch.
func (s *Scheduler) Drain() []Entry {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()
	return batch
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
