package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/argus-labs/warband/pkg/battle/classify"
	"github.com/argus-labs/warband/pkg/battle/queue"
	"github.com/argus-labs/warband/pkg/battle/types"
)

// Refresher is an oracle whose state is reloaded periodically by Run.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Tick advances the orchestration state by diff. Live instances are updated once at least
// ObjectiveUpdateInterval has accumulated. Queue timers and deferred queue updates run every call.
func (m *Manager) Tick(diff time.Duration) {
	start := time.Now()

	m.updateTimer += diff
	if m.updateTimer > ObjectiveUpdateInterval {
		m.sweep(m.updateTimer)
		m.updateTimer = 0
	}

	for i := range types.MaxQueueTypes {
		m.queues.Get(types.QueueTypeID(i)).UpdateEvents(diff)
	}

	batch := m.scheduler.Drain()
	for _, e := range batch {
		m.queues.Get(e.QueueType).Update(diff, queue.Params{
			MatchType:   e.MatchType,
			Bracket:     e.Bracket,
			TeamSize:    e.TeamSize,
			Rated:       e.Rated(),
			RatingFloor: e.RatingFloor,
		})
	}
	m.tel.Metrics.Count("schedule.drained", int64(len(batch)))

	if m.options.MaxRatingDifference != 0 && m.options.RatedUpdateTimer != 0 {
		if m.nextRatedUpdate < diff {
			m.rescanRatedArenas(diff)
			m.nextRatedUpdate = m.options.RatedUpdateTimer
		} else {
			m.nextRatedUpdate -= diff
		}
	}

	m.tel.Metrics.Gauge("instances.live", float64(m.pool.Count()))
	m.tel.Metrics.Since("tick.duration", start)
}

// sweep advances every live instance by elapsed and retires the completed ones. Template
// instances are never visited.
func (m *Manager) sweep(elapsed time.Duration) {
	retired := 0
	for _, id := range m.pool.LiveKinds() {
		for _, inst := range m.pool.Live(id) {
			inst.Update(elapsed)
			if !inst.IsComplete() {
				continue
			}
			if m.Retire(id, inst.InstanceHandle()) {
				retired++
			}
		}
	}
	if retired > 0 {
		m.log.Debug().Int("retired", retired).Msg("completed instances retired")
	}
}

// rescanRatedArenas asks every rated arena bracket to look for pairings.
func (m *Manager) rescanRatedArenas(diff time.Duration) {
	for _, q := range classify.ArenaQueues() {
		for b := range types.MaxBrackets {
			m.queues.Get(q).Update(diff, queue.Params{
				MatchType: types.MatchTypeAA,
				Bracket:   types.BracketID(b),
				TeamSize:  classify.TeamSizeOf(q),
				Rated:     true,
			})
		}
	}
}

// Run ticks the manager until ctx is cancelled. Refreshers are reloaded on their own period; a
// failed refresh is logged and reported, and the previous oracle state stays in use.
func (m *Manager) Run(ctx context.Context, refreshers ...Refresher) error {
	ticker := time.NewTicker(m.options.TickInterval)
	defer ticker.Stop()
	refresh := time.NewTicker(m.options.OracleRefreshInterval)
	defer refresh.Stop()

	m.log.Info().Dur("tick_interval", m.options.TickInterval).Msg("starting tick loop")

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			m.Tick(now.Sub(last))
			last = now
		case <-refresh.C:
			for _, r := range refreshers {
				if err := r.Refresh(ctx); err != nil {
					name := fmt.Sprintf("%T", r)
					m.log.Warn().Err(err).Str("refresher", name).Msg("oracle refresh failed")
					m.tel.CaptureException(ctx, err, map[string]string{"refresher": name})
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
