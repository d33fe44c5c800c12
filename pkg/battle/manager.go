// Package battle owns the orchestration state of instanced matches: the template catalog, the
// live instance pool, the deferred queue updates and the tick that drives them.
package battle

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/argus-labs/warband/pkg/battle/catalog"
	"github.com/argus-labs/warband/pkg/battle/classify"
	"github.com/argus-labs/warband/pkg/battle/kind"
	"github.com/argus-labs/warband/pkg/battle/oracle"
	"github.com/argus-labs/warband/pkg/battle/pool"
	"github.com/argus-labs/warband/pkg/battle/queue"
	"github.com/argus-labs/warband/pkg/battle/schedule"
	"github.com/argus-labs/warband/pkg/battle/status"
	"github.com/argus-labs/warband/pkg/battle/types"
	"github.com/argus-labs/warband/pkg/telemetry"
)

// Manager is the single owner of the match orchestration state. Tick, CreateLiveInstance,
// Retire and the load methods must be called from one goroutine. Schedule is safe from any.
type Manager struct {
	options Options

	pool          *pool.Pool
	catalog       *catalog.Catalog
	battlemasters *catalog.Battlemasters
	scheduler     *schedule.Scheduler
	queues        *queue.Set

	disabler oracle.Disabler
	holidays oracle.Holidays

	updateTimer     time.Duration
	nextRatedUpdate time.Duration
	testing         bool
	arenaTesting    bool

	tel *telemetry.Telemetry
	log zerolog.Logger
}

// NewManager creates a manager with an empty catalog. Call LoadTemplates before creating instances.
func NewManager(opts Options) (*Manager, error) {
	cfg, err := loadManagerConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load manager config")
	}
	options := newDefaultOptions()
	cfg.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return nil, eris.Wrap(err, "invalid manager options")
	}

	if options.Queues == nil {
		options.Queues = &queue.Set{}
	}
	if options.Rand == nil {
		seed := uint64(time.Now().UnixNano()) //nolint:gosec // map draws need no crypto randomness
		options.Rand = rand.New(rand.NewPCG(seed, seed))
	}
	if options.Telemetry == nil {
		tel := telemetry.NewNop("warband")
		options.Telemetry = &tel
	}

	p := pool.New(options.Registry, options.Rand)
	cat, _ := catalog.Load(nil, catalog.LoadOptions{Logger: zerolog.Nop()})
	p.SetCandidateSource(cat)

	return &Manager{
		options:         options,
		pool:            p,
		catalog:         cat,
		scheduler:       schedule.New(),
		queues:          options.Queues,
		disabler:        options.Disabler,
		holidays:        options.Holidays,
		nextRatedUpdate: options.RatedUpdateTimer,
		tel:             options.Telemetry,
		log:             options.Telemetry.GetLogger("battle"),
	}, nil
}

// LoadTemplates reads every row from src and builds the template catalog. Rows that fail
// validation are dropped and listed in the report.
func (m *Manager) LoadTemplates(
	ctx context.Context, src catalog.RowSource, defs catalog.DefinitionTable, locs catalog.LocationTable,
) (*catalog.LoadReport, error) {
	ctx, span := m.tel.Tracer.Start(ctx, "battle.load_templates")
	defer span.End()

	start := time.Now()
	rows, err := src.Rows(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, eris.Wrap(err, "failed to read template rows")
	}

	cat, report := catalog.Load(rows, catalog.LoadOptions{
		Definitions: defs,
		Locations:   locs,
		Disabler:    m.disabler,
		Register:    m.pool.RegisterTemplate,
		Logger:      m.tel.GetLogger("catalog"),
	})
	m.catalog = cat
	m.pool.SetCandidateSource(cat)

	span.SetAttributes(
		attribute.Int("templates.rows", len(rows)),
		attribute.Int("templates.loaded", report.Loaded),
		attribute.Int("templates.dropped", len(report.Errors)),
	)
	span.SetStatus(codes.Ok, "")
	m.tel.Metrics.Since("templates.load", start)
	return report, nil
}

// LoadBattlemasters builds the creature to kind assignments.
func (m *Manager) LoadBattlemasters(
	rows []catalog.BattlemasterRow, creatures catalog.CreatureTable, defs catalog.DefinitionTable,
) *catalog.BattlemasterReport {
	bm, report := catalog.LoadBattlemasters(rows, creatures, defs, m.tel.GetLogger("catalog"))
	m.battlemasters = bm
	return report
}

// BattlemasterKind returns the kind a battlemaster creature offers.
func (m *Manager) BattlemasterKind(entry uint32) (types.MatchTypeID, bool) {
	if m.battlemasters == nil {
		return types.MatchTypeNone, false
	}
	return m.battlemasters.KindOf(entry)
}

func (m *Manager) BattlemasterCount() int {
	if m.battlemasters == nil {
		return 0
	}
	return m.battlemasters.Len()
}

// Catalog returns the loaded templates.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// GetInstance finds a live instance. Instance 0 is never found. MatchTypeAny searches every kind.
func (m *Manager) GetInstance(instanceID uint32, id types.MatchTypeID) (kind.Match, bool) {
	return m.pool.Lookup(instanceID, id)
}

// GetTemplateInstance returns the template instance of a kind.
func (m *Manager) GetTemplateInstance(id types.MatchTypeID) (kind.Match, bool) {
	return m.pool.Template(id)
}

// CreateLiveInstance creates an instance awaiting players. Aggregate kinds resolve to a concrete
// kind drawn by map weight.
func (m *Manager) CreateLiveInstance(
	id types.MatchTypeID, bracket types.Bracket, teamSize types.TeamSize, rated bool,
) (kind.Match, error) {
	inst, err := m.pool.CreateLiveInstance(id, bracket, teamSize, rated)
	if err != nil {
		m.log.Error().Err(err).Stringer("type_id", id).Uint8("bracket", uint8(bracket.ID)).
			Msg("could not create live instance")
		return nil, eris.Wrap(err, "failed to create live instance")
	}
	m.log.Debug().
		Stringer("type_id", inst.ResolvedKind()).
		Uint8("bracket", uint8(bracket.ID)).
		Uint32("instance_id", inst.InstanceHandle()).
		Uint32("client_id", inst.ClientVisibleID()).
		Msg("live instance created")
	m.tel.Metrics.Count("instances.created", 1, "type:"+inst.ResolvedKind().String())
	return inst, nil
}

// Retire removes a live instance and releases it. It reports false when no such instance exists.
func (m *Manager) Retire(id types.MatchTypeID, instanceID uint32) bool {
	inst, ok := m.pool.Retire(id, instanceID)
	if !ok {
		return false
	}
	inst.Release()
	m.log.Debug().Stringer("type_id", id).Uint32("instance_id", instanceID).Msg("instance retired")
	m.tel.Metrics.Count("instances.retired", 1, "type:"+id.String())
	return true
}

// AddFreeSlot lists an instance as open to late joiners.
func (m *Manager) AddFreeSlot(id types.MatchTypeID, inst kind.Match) {
	m.pool.AddFreeSlot(id, inst)
}

// RemoveFreeSlot delists an instance.
func (m *Manager) RemoveFreeSlot(id types.MatchTypeID, instanceID uint32) {
	m.pool.RemoveFreeSlot(id, instanceID)
}

// FreeSlots returns the open instances of a kind, most recently listed first.
func (m *Manager) FreeSlots(id types.MatchTypeID) []kind.Match {
	return m.pool.FreeSlots(id)
}

// Schedule defers a queue update to the next tick. Duplicate requests collapse into one.
func (m *Manager) Schedule(
	ratingFloor uint32, teamSize types.TeamSize, q types.QueueTypeID, id types.MatchTypeID, bracket types.BracketID,
) {
	m.scheduler.Schedule(schedule.Entry{
		RatingFloor: ratingFloor,
		TeamSize:    teamSize,
		QueueType:   q,
		MatchType:   id,
		Bracket:     bracket,
	})
}

// StartPosition returns where a side enters an instance.
func (m *Manager) StartPosition(instanceID uint32, id types.MatchTypeID, team types.Team) (*types.Location, bool) {
	if team >= types.TeamCount {
		return nil, false
	}
	inst, ok := m.pool.Lookup(instanceID, id)
	if !ok {
		return nil, false
	}
	loc := inst.Template().StartLocations[team]
	return loc, loc != nil
}

// MatchList builds the list view a battlemaster shows for a kind.
func (m *Manager) MatchList(id types.MatchTypeID, battlemaster uuid.UUID, hasRandomWinToday bool) (status.ListView, bool) {
	tmpl, ok := m.catalog.Get(id)
	if !ok {
		return status.ListView{}, false
	}
	return status.BuildList(tmpl, battlemaster, hasRandomWinToday), true
}

// SetHolidayWeekends marks the template of every kind whose bit is set in mask as holiday
// active and clears the others. Kinds 1 through 31 are covered.
func (m *Manager) SetHolidayWeekends(mask uint32) {
	for id := types.MatchTypeID(1); id < 32; id++ {
		if tmpl, ok := m.pool.Template(id); ok {
			tmpl.SetHolidayActive(mask&(1<<id) != 0)
		}
	}
}

// IsWeekendActive reports whether the call-to-arms event of a kind is running.
func (m *Manager) IsWeekendActive(id types.MatchTypeID) bool {
	return classify.IsWeekendActive(m.holidays, id)
}

// ToggleTesting flips testing mode, which lets a match start with a single player.
func (m *Manager) ToggleTesting() bool {
	m.testing = !m.testing
	m.log.Info().Bool("enabled", m.testing).Msg("battleground testing toggled")
	return m.testing
}

// ToggleArenaTesting flips arena testing mode.
func (m *Manager) ToggleArenaTesting() bool {
	m.arenaTesting = !m.arenaTesting
	m.log.Info().Bool("enabled", m.arenaTesting).Msg("arena testing toggled")
	return m.arenaTesting
}

func (m *Manager) IsTesting() bool      { return m.testing }
func (m *Manager) IsArenaTesting() bool { return m.arenaTesting }

// MaxRatingDifference returns the configured rating gap, or 5000 when none is set.
func (m *Manager) MaxRatingDifference() uint32 {
	if m.options.MaxRatingDifference == 0 {
		return defaultMaxRatingDifference
	}
	return m.options.MaxRatingDifference
}

func (m *Manager) RatingDiscardTimer() time.Duration   { return m.options.RatingDiscardTimer }
func (m *Manager) PrematureFinishTimer() time.Duration { return m.options.PrematureFinishTimer }

// Close releases every live and template instance.
func (m *Manager) Close() {
	m.log.Info().Int("live", m.pool.Count()).Msg("releasing match instances")
	m.pool.Clear()
}
