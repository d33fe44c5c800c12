package catalog

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/warband/pkg/battle/classify"
	"github.com/argus-labs/warband/pkg/battle/oracle"
	"github.com/argus-labs/warband/pkg/battle/types"
)

// LoadOptions are the collaborators a template load joins rows with.
type LoadOptions struct {
	Definitions DefinitionTable
	Locations   LocationTable
	Disabler    oracle.Disabler
	// Register builds the template instance. A template it rejects is dropped.
	Register func(*types.Template) error
	Logger   zerolog.Logger
}

// RowError is a row that was dropped during a load.
type RowError struct {
	TypeID types.MatchTypeID
	Err    error
}

// LoadReport summarizes a load.
type LoadReport struct {
	Loaded   int
	Disabled []types.MatchTypeID
	Errors   []RowError
}

func (r *LoadReport) drop(id types.MatchTypeID, err error) {
	r.Errors = append(r.Errors, RowError{TypeID: id, Err: err})
}

// Load builds a catalog from rows. Bad rows are logged, reported and skipped, never fatal.
func Load(rows []Row, opts LoadOptions) (*Catalog, *LoadReport) {
	log := opts.Logger
	c := newCatalog()
	report := &LoadReport{}

	for _, row := range rows {
		id := row.TypeID
		if opts.Disabler != nil && opts.Disabler.IsDisabled(id) {
			log.Debug().Stringer("type_id", id).Msg("match type disabled, template skipped")
			report.Disabled = append(report.Disabled, id)
			continue
		}

		tmpl, err := buildTemplate(row, opts)
		if err != nil {
			log.Error().Err(err).Stringer("type_id", id).Msg("template not created")
			report.drop(id, err)
			continue
		}
		if _, exists := c.templates[id]; exists {
			err := eris.Wrapf(ErrConfig, "duplicate template row for type %d", id)
			log.Error().Err(err).Stringer("type_id", id).Msg("template row ignored")
			report.drop(id, err)
			continue
		}

		if opts.Register != nil {
			if err := opts.Register(tmpl); err != nil {
				log.Error().Err(err).Stringer("type_id", id).Msg("could not create template instance")
				report.drop(id, err)
				continue
			}
		}

		c.templates[id] = tmpl
		if mapID, ok := tmpl.SingleMap(); ok {
			c.byMap[mapID] = tmpl
		}
		report.Loaded++
	}

	log.Info().Int("loaded", report.Loaded).Int("dropped", len(report.Errors)).
		Int("disabled", len(report.Disabled)).Msg("match templates loaded")
	return c, report
}

func buildTemplate(row Row, opts LoadOptions) (*types.Template, error) {
	id := row.TypeID
	def, ok := opts.Definitions.Definition(id)
	if !ok {
		return nil, eris.Wrapf(ErrConfig, "type %d has no definition", id)
	}

	tmpl := &types.Template{
		ID:                 id,
		IsArena:            def.IsArena,
		MinLevel:           def.MinLevel,
		MaxLevel:           def.MaxLevel,
		MinTeamSize:        def.MinTeamSize,
		MaxTeamSize:        def.MaxTeamSize,
		Weight:             row.Weight,
		MapIDs:             def.Maps(),
		MaxStartDistanceSq: row.MaxStartDistance * row.MaxStartDistance,
		ScriptName:         row.ScriptName,
		HolidayLinked:      classify.HolidayOf(id) != types.HolidayNone,
	}

	if classify.IsAggregateKind(id) {
		return tmpl, nil
	}
	for team, locID := range [types.TeamCount]uint32{row.AllianceStartLoc, row.HordeStartLoc} {
		loc, ok := opts.Locations.Location(locID)
		if !ok {
			return nil, eris.Wrapf(ErrConfig, "type %d has a non-existing %s start location %d",
				id, types.Team(team), locID)
		}
		tmpl.StartLocations[team] = loc
	}
	return tmpl, nil
}
