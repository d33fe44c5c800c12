// Package oracle answers the yes/no questions the orchestration layer asks other world systems:
// whether a match kind is disabled and whether a world event is running.
package oracle

import (
	"sync"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// Disabler reports content an operator switched off.
type Disabler interface {
	IsDisabled(types.MatchTypeID) bool
}

// Holidays reports running world events.
type Holidays interface {
	IsHolidayActive(types.HolidayID) bool
}

// Static is an in-memory Disabler and Holidays.
type Static struct {
	mu       sync.RWMutex
	disabled map[types.MatchTypeID]struct{}
	holidays map[types.HolidayID]struct{}
}

var (
	_ Disabler = (*Static)(nil)
	_ Holidays = (*Static)(nil)
)

// NewStatic creates an oracle with nothing disabled and no running events.
func NewStatic() *Static {
	return &Static{
		disabled: make(map[types.MatchTypeID]struct{}),
		holidays: make(map[types.HolidayID]struct{}),
	}
}

// Disable switches a kind off.
func (s *Static) Disable(ids ...types.MatchTypeID) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.disabled[id] = struct{}{}
	}
	return s
}

// SetHoliday starts or stops an event.
func (s *Static) SetHoliday(h types.HolidayID, active bool) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active {
		s.holidays[h] = struct{}{}
	} else {
		delete(s.holidays, h)
	}
	return s
}

func (s *Static) IsDisabled(id types.MatchTypeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.disabled[id]
	return ok
}

func (s *Static) IsHolidayActive(h types.HolidayID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.holidays[h]
	return ok
}
