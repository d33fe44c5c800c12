package battle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/warband/pkg/battle"
	"github.com/argus-labs/warband/pkg/battle/catalog"
	"github.com/argus-labs/warband/pkg/battle/kind"
	"github.com/argus-labs/warband/pkg/battle/oracle"
	"github.com/argus-labs/warband/pkg/battle/pool"
	"github.com/argus-labs/warband/pkg/battle/queue"
	"github.com/argus-labs/warband/pkg/battle/types"
	"github.com/argus-labs/warband/pkg/telemetry"
	"github.com/argus-labs/warband/pkg/testutils"
)

type fixture struct {
	manager *battle.Manager
	queues  map[types.QueueTypeID]*queue.Recorder
	world   *catalog.WorldData
	metrics *countingClient
}

type countingClient struct {
	*ddstatsd.NoOpClient
	mu     sync.Mutex
	counts map[string]int64
	gauges map[string]float64
}

func (c *countingClient) Count(name string, value int64, _ []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += value
	return nil
}

func (c *countingClient) Gauge(name string, value float64, _ []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
	return nil
}

func (c *countingClient) count(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

func (c *countingClient) gauge(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gauges[name]
}

func newFixture(t *testing.T, opts battle.Options) *fixture {
	t.Helper()

	f := &fixture{
		queues: make(map[types.QueueTypeID]*queue.Recorder),
		metrics: &countingClient{
			NoOpClient: &ddstatsd.NoOpClient{},
			counts:     make(map[string]int64),
			gauges:     make(map[string]float64),
		},
	}
	set := queue.NewSet(func(id types.QueueTypeID) queue.Queue {
		r := queue.NewRecorder()
		f.queues[id] = r
		return r
	})
	tel := telemetry.NewNop("warband")
	tel.Metrics = telemetry.NewMetricsWithClient(f.metrics)

	opts.Queues = &set
	opts.Telemetry = &tel
	if opts.Rand == nil {
		opts.Rand = testutils.NewRand(t)
	}
	m, err := battle.NewManager(opts)
	require.NoError(t, err)

	world, err := catalog.LoadWorldDataFromFile("catalog/testdata/world.json")
	require.NoError(t, err)
	report, err := m.LoadTemplates(context.Background(),
		catalog.JSONFileSource{Path: "catalog/testdata/templates.json"}, world, world)
	require.NoError(t, err)
	require.Equal(t, 8, report.Loaded)

	f.manager = m
	f.world = world
	return f
}

func (f *fixture) resetQueues() {
	for _, r := range f.queues {
		r.Reset()
	}
}

func (f *fixture) arenaUpdates() int {
	n := 0
	for _, q := range []types.QueueTypeID{types.Queue2v2, types.Queue3v3, types.Queue5v5} {
		n += len(f.queues[q].Updates())
	}
	return n
}

func bracket(id types.BracketID) types.Bracket {
	return types.Bracket{ID: id, MinLevel: 10, MaxLevel: 19}
}

func begin(t *testing.T, m kind.Match) *kind.Base {
	t.Helper()
	base, ok := m.(*kind.Base)
	require.True(t, ok)
	require.True(t, base.Begin())
	return base
}

func TestTick_SweepWaitsForObjectiveInterval(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	inst, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(1), 0, false)
	require.NoError(t, err)
	base := begin(t, inst)
	warmup := base.RemainingTime()

	f.manager.Tick(500 * time.Millisecond)
	f.manager.Tick(500 * time.Millisecond)
	assert.Equal(t, warmup, base.RemainingTime(), "exactly one interval does not trigger the sweep")

	f.manager.Tick(time.Millisecond)
	assert.Equal(t, warmup-1001*time.Millisecond, base.RemainingTime(), "the whole accumulated time is applied")

	f.manager.Tick(600 * time.Millisecond)
	assert.Equal(t, warmup-1001*time.Millisecond, base.RemainingTime(), "accumulator restarts from zero")
}

func TestTick_RetiresCompletedInstances(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	inst, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(1), 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), inst.ClientVisibleID())
	other, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(1), 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), other.ClientVisibleID())

	base := begin(t, inst)
	f.manager.Tick(3 * time.Minute)
	require.Equal(t, types.StatusInProgress, base.Status())
	require.True(t, base.Finish(types.TeamAlliance))

	f.manager.AddFreeSlot(types.MatchTypeWS, inst)
	f.manager.Tick(3 * time.Minute)

	_, ok := f.manager.GetInstance(inst.InstanceHandle(), types.MatchTypeWS)
	assert.False(t, ok)
	assert.True(t, base.Released())
	assert.Empty(t, f.manager.FreeSlots(types.MatchTypeWS))
	_, ok = f.manager.GetInstance(other.InstanceHandle(), types.MatchTypeAny)
	assert.True(t, ok, "unfinished instances stay")

	next, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(1), 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next.ClientVisibleID(), "the retired id is reused")

	assert.Equal(t, int64(1), f.metrics.count("instances.retired"))
	assert.Equal(t, int64(3), f.metrics.count("instances.created"))
	assert.InDelta(t, 1.0, f.metrics.gauge("instances.live"), 1e-9, "gauge reflects the last tick")
}

func TestTick_TemplatesAreNeverSwept(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	tmpl, ok := f.manager.GetTemplateInstance(types.MatchTypeAB)
	require.True(t, ok)

	for range 5 {
		f.manager.Tick(10 * time.Minute)
	}
	assert.Equal(t, types.StatusNone, tmpl.Status())
	assert.False(t, tmpl.(*kind.Base).Released())

	_, ok = f.manager.GetInstance(pool.TemplateHandle, types.MatchTypeAB)
	assert.False(t, ok, "instance 0 is never returned")
}

func TestTick_UpdatesQueueEventsEveryCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	f.manager.Tick(20 * time.Millisecond)
	f.manager.Tick(30 * time.Millisecond)

	require.Len(t, f.queues, types.MaxQueueTypes)
	for id, r := range f.queues {
		assert.Equal(t, []time.Duration{20 * time.Millisecond, 30 * time.Millisecond}, r.Events(), id.String())
	}
}

func TestTick_DrainsScheduledUpdatesOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	f.manager.Schedule(0, 0, types.QueueWS, types.MatchTypeWS, 2)
	f.manager.Schedule(0, 0, types.QueueWS, types.MatchTypeWS, 2)
	f.manager.Schedule(1800, types.TeamSize3v3, types.Queue3v3, types.MatchTypeAA, 4)

	f.manager.Tick(40 * time.Millisecond)

	ws := f.queues[types.QueueWS].Updates()
	require.Len(t, ws, 1)
	assert.Equal(t, queue.Call{
		Diff:   40 * time.Millisecond,
		Params: queue.Params{MatchType: types.MatchTypeWS, Bracket: 2},
	}, ws[0])

	arena := f.queues[types.Queue3v3].Updates()
	require.Len(t, arena, 1)
	assert.Equal(t, queue.Params{
		MatchType:   types.MatchTypeAA,
		Bracket:     4,
		TeamSize:    types.TeamSize3v3,
		Rated:       true,
		RatingFloor: 1800,
	}, arena[0].Params)

	f.resetQueues()
	f.manager.Tick(40 * time.Millisecond)
	assert.Empty(t, f.queues[types.QueueWS].Updates())
}

func TestTick_ForcedRatedRescan(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{MaxRatingDifference: 150, RatedUpdateTimer: 5 * time.Second})

	f.manager.Tick(4 * time.Second)
	assert.Zero(t, f.arenaUpdates(), "countdown 5s is not below 4s")

	f.manager.Tick(2 * time.Second)
	assert.Equal(t, 3*types.MaxBrackets, f.arenaUpdates())

	for _, q := range []types.QueueTypeID{types.Queue2v2, types.Queue3v3, types.Queue5v5} {
		calls := f.queues[q].Updates()
		require.Len(t, calls, types.MaxBrackets)
		for b, c := range calls {
			assert.Equal(t, types.MatchTypeAA, c.Params.MatchType)
			assert.Equal(t, types.BracketID(b), c.Params.Bracket)
			assert.True(t, c.Params.Rated)
			assert.Zero(t, c.Params.RatingFloor)
			assert.Equal(t, 2*time.Second, c.Diff)
		}
	}
	assert.Equal(t, types.TeamSize2v2, f.queues[types.Queue2v2].Updates()[0].Params.TeamSize)
	assert.Equal(t, types.TeamSize5v5, f.queues[types.Queue5v5].Updates()[0].Params.TeamSize)
	assert.Empty(t, f.queues[types.QueueWS].Updates(), "battleground queues are not rescanned")

	f.resetQueues()
	f.manager.Tick(5 * time.Second)
	assert.Zero(t, f.arenaUpdates(), "countdown was reset")
	f.manager.Tick(time.Millisecond)
	assert.Equal(t, 3*types.MaxBrackets, f.arenaUpdates())
}

func TestTick_RescanCountdownBoundary(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{MaxRatingDifference: 150, RatedUpdateTimer: 5 * time.Second})

	f.manager.Tick(5 * time.Second)
	assert.Zero(t, f.arenaUpdates(), "a diff equal to the countdown only drains it")

	f.manager.Tick(time.Nanosecond)
	assert.Equal(t, 3*types.MaxBrackets, f.arenaUpdates(), "an empty countdown fires on the next tick")
}

func TestTick_NoRescanWithoutRatingDifference(t *testing.T) {
	t.Setenv("WARBAND_MAX_RATING_DIFFERENCE", "0")

	f := newFixture(t, battle.Options{RatedUpdateTimer: time.Second})
	for range 3 {
		f.manager.Tick(10 * time.Second)
	}
	assert.Zero(t, f.arenaUpdates())
	assert.Equal(t, uint32(5000), f.manager.MaxRatingDifference())
}

func TestCreateLiveInstance_RandomBattleground(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	seen := make(map[types.MatchTypeID]int)
	for range 200 {
		inst, err := f.manager.CreateLiveInstance(types.MatchTypeRB, bracket(0), 0, false)
		require.NoError(t, err)
		assert.True(t, inst.IsRandomSelection())
		seen[inst.ResolvedKind()]++
	}
	assert.Zero(t, seen[types.MatchTypeEY], "zero weight maps are never drawn")
	assert.Zero(t, seen[types.MatchTypeRB])
	assert.Positive(t, seen[types.MatchTypeAV])
	assert.Positive(t, seen[types.MatchTypeWS])
	assert.Positive(t, seen[types.MatchTypeAB])
}

func TestCreateLiveInstance_AnyArena(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	inst, err := f.manager.CreateLiveInstance(types.MatchTypeAA, bracket(0), types.TeamSize2v2, true)
	require.NoError(t, err)
	assert.Contains(t, []types.MatchTypeID{types.MatchTypeNA, types.MatchTypeBE}, inst.ResolvedKind())
	assert.False(t, inst.IsRandomSelection())
	assert.Zero(t, inst.ClientVisibleID())
	assert.True(t, inst.IsRated())
}

func TestCreateLiveInstance_MissingTemplate(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	_, err := f.manager.CreateLiveInstance(types.MatchTypeSA, bracket(0), 0, false)
	require.Error(t, err)
	assert.True(t, eris.Is(err, pool.ErrNoTemplate))
}

func TestLoadTemplates_DisabledKind(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{Disabler: oracle.NewStatic().Disable(types.MatchTypeIC)})
	_, ok := f.manager.GetTemplateInstance(types.MatchTypeIC)
	assert.False(t, ok)

	m, err := battle.NewManager(battle.Options{Disabler: oracle.NewStatic().Disable(types.MatchTypeWS)})
	require.NoError(t, err)
	report, err := m.LoadTemplates(context.Background(),
		catalog.JSONFileSource{Path: "catalog/testdata/templates.json"}, f.world, f.world)
	require.NoError(t, err)
	assert.Equal(t, []types.MatchTypeID{types.MatchTypeWS}, report.Disabled)
	_, ok = m.GetTemplateInstance(types.MatchTypeWS)
	assert.False(t, ok)
}

func TestLoadTemplates_SourceError(t *testing.T) {
	t.Parallel()

	m, err := battle.NewManager(battle.Options{})
	require.NoError(t, err)
	world, err := catalog.LoadWorldDataFromFile("catalog/testdata/world.json")
	require.NoError(t, err)

	_, err = m.LoadTemplates(context.Background(), catalog.JSONFileSource{Path: "missing.json"}, world, world)
	require.Error(t, err)
	assert.Zero(t, m.Catalog().Len())
}

func TestSetHolidayWeekends(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	f.manager.SetHolidayWeekends(1<<types.MatchTypeWS | 1<<types.MatchTypeAB)

	active := func(id types.MatchTypeID) bool {
		tmpl, ok := f.manager.GetTemplateInstance(id)
		require.True(t, ok)
		return tmpl.IsHolidayActive()
	}
	assert.True(t, active(types.MatchTypeWS))
	assert.True(t, active(types.MatchTypeAB))
	assert.False(t, active(types.MatchTypeAV))

	inst, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(0), 0, false)
	require.NoError(t, err)
	assert.True(t, inst.IsHolidayActive(), "live instances inherit the template flag")

	f.manager.SetHolidayWeekends(0)
	assert.False(t, active(types.MatchTypeWS))
	assert.True(t, inst.IsHolidayActive(), "running instances keep their flag")
}

func TestIsWeekendActive(t *testing.T) {
	t.Parallel()

	holidays := oracle.NewStatic().SetHoliday(types.HolidayCallToArmsEY, true)
	f := newFixture(t, battle.Options{Holidays: holidays})
	assert.True(t, f.manager.IsWeekendActive(types.MatchTypeEY))
	assert.False(t, f.manager.IsWeekendActive(types.MatchTypeAV))
	assert.False(t, f.manager.IsWeekendActive(types.MatchTypeNA))
}

func TestStartPosition(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	inst, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(0), 0, false)
	require.NoError(t, err)

	loc, ok := f.manager.StartPosition(inst.InstanceHandle(), types.MatchTypeWS, types.TeamAlliance)
	require.True(t, ok)
	assert.Equal(t, uint32(769), loc.ID)

	loc, ok = f.manager.StartPosition(inst.InstanceHandle(), types.MatchTypeAny, types.TeamHorde)
	require.True(t, ok)
	assert.Equal(t, uint32(770), loc.ID)

	_, ok = f.manager.StartPosition(inst.InstanceHandle(), types.MatchTypeWS, types.Team(7))
	assert.False(t, ok)
	_, ok = f.manager.StartPosition(inst.InstanceHandle()+100, types.MatchTypeWS, types.TeamHorde)
	assert.False(t, ok)
}

func TestRetire(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	inst, err := f.manager.CreateLiveInstance(types.MatchTypeAB, bracket(0), 0, false)
	require.NoError(t, err)

	assert.True(t, f.manager.Retire(types.MatchTypeAB, inst.InstanceHandle()))
	assert.True(t, inst.(*kind.Base).Released())
	assert.False(t, f.manager.Retire(types.MatchTypeAB, inst.InstanceHandle()))
}

func TestBattlemastersAndMatchList(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	_, ok := f.manager.BattlemasterKind(347)
	assert.False(t, ok, "nothing loaded yet")
	assert.Zero(t, f.manager.BattlemasterCount())

	report := f.manager.LoadBattlemasters(f.world.BattlemasterRows(), f.world, f.world)
	assert.Len(t, report.Violations, 2)
	assert.Equal(t, 4, f.manager.BattlemasterCount())

	id, ok := f.manager.BattlemasterKind(347)
	require.True(t, ok)
	assert.Equal(t, types.MatchTypeAV, id)

	bm := uuid.New()
	view, ok := f.manager.MatchList(id, bm, false)
	require.True(t, ok)
	assert.Equal(t, types.MatchTypeAV, view.MatchType)
	assert.Equal(t, uint8(51), view.MinLevel)
	assert.False(t, view.PvPAnywhere)

	_, ok = f.manager.MatchList(types.MatchTypeSA, bm, false)
	assert.False(t, ok)
}

func TestTogglesAndTimers(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{
		MaxRatingDifference:  300,
		RatingDiscardTimer:   time.Minute,
		PrematureFinishTimer: 2 * time.Minute,
	})
	m := f.manager

	assert.False(t, m.IsTesting())
	assert.True(t, m.ToggleTesting())
	assert.True(t, m.IsTesting())
	assert.False(t, m.ToggleTesting())

	assert.True(t, m.ToggleArenaTesting())
	assert.True(t, m.IsArenaTesting())

	assert.Equal(t, uint32(300), m.MaxRatingDifference())
	assert.Equal(t, time.Minute, m.RatingDiscardTimer())
	assert.Equal(t, 2*time.Minute, m.PrematureFinishTimer())
}

func TestClose(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{})
	inst, err := f.manager.CreateLiveInstance(types.MatchTypeWS, bracket(0), 0, false)
	require.NoError(t, err)
	tmpl, _ := f.manager.GetTemplateInstance(types.MatchTypeWS)

	f.manager.Close()
	assert.True(t, inst.(*kind.Base).Released())
	assert.True(t, tmpl.(*kind.Base).Released())
	_, ok := f.manager.GetTemplateInstance(types.MatchTypeWS)
	assert.False(t, ok)
}

type countingRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t, battle.Options{
		TickInterval:          5 * time.Millisecond,
		OracleRefreshInterval: 10 * time.Millisecond,
	})
	ok := &countingRefresher{}
	failing := &countingRefresher{err: eris.New("redis unavailable")}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := f.manager.Run(ctx, ok, failing)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.NotEmpty(t, f.queues[types.QueueAV].Events())
	assert.Positive(t, ok.count())
	assert.Equal(t, ok.count(), failing.count(), "a failing refresher does not stop the loop")
}
