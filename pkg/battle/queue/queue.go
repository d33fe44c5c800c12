// Package queue defines the contract of the matchmaking queues the sweeper drives.
package queue

import (
	"sync"
	"time"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// Params selects the slice of a queue an update pass works on.
type Params struct {
	MatchType   types.MatchTypeID
	Bracket     types.BracketID
	TeamSize    types.TeamSize
	Rated       bool
	RatingFloor uint32
}

// Queue is implemented by the queue membership and pairing layer.
type Queue interface {
	// UpdateEvents advances queue timers such as invite expiry.
	UpdateEvents(diff time.Duration)
	// Update tries to form matches for one slice of the queue.
	Update(diff time.Duration, params Params)
}

// Nop ignores every call.
type Nop struct{}

var _ Queue = Nop{}

func (Nop) UpdateEvents(time.Duration)   {}
func (Nop) Update(time.Duration, Params) {}

// Call is one recorded Update.
type Call struct {
	Diff   time.Duration
	Params Params
}

// Recorder keeps every call it receives.
type Recorder struct {
	mu      sync.Mutex
	events  []time.Duration
	updates []Call
}

var _ Queue = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) UpdateEvents(diff time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, diff)
}

func (r *Recorder) Update(diff time.Duration, params Params) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, Call{Diff: diff, Params: params})
}

// Events returns a copy of the diffs passed to UpdateEvents.
func (r *Recorder) Events() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.events...)
}

// Updates returns a copy of the recorded Update calls.
func (r *Recorder) Updates() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.updates...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.updates = nil
}

// Set holds one queue per queue type.
type Set [types.MaxQueueTypes]Queue

// NewSet fills every slot with q.
func NewSet(q func(types.QueueTypeID) Queue) Set {
	var s Set
	for i := range s {
		s[i] = q(types.QueueTypeID(i))
	}
	return s
}

// Get returns the queue for a type, or Nop when the type is out of range or unset.
func (s *Set) Get(id types.QueueTypeID) Queue {
	if int(id) >= len(s) || s[id] == nil {
		return Nop{}
	}
	return s[id]
}
