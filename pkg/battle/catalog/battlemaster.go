package catalog

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// BattlemasterRow assigns a creature to the match kind it offers.
type BattlemasterRow struct {
	Entry  uint32            `json:"entry"`
	TypeID types.MatchTypeID `json:"bg_template"`
}

// Violation is a creature whose data disagrees with the battlemaster table.
type Violation struct {
	Entry  uint32
	Reason string
}

// Battlemasters maps creature entries to the kind they offer.
type Battlemasters struct {
	byEntry map[uint32]types.MatchTypeID
}

// KindOf returns the kind offered by a creature.
func (b *Battlemasters) KindOf(entry uint32) (types.MatchTypeID, bool) {
	id, ok := b.byEntry[entry]
	return id, ok
}

// Len returns the number of assigned creatures.
func (b *Battlemasters) Len() int {
	return len(b.byEntry)
}

// BattlemasterReport summarizes a battlemaster load.
type BattlemasterReport struct {
	Dropped    []RowError
	Violations []Violation
}

// LoadBattlemasters builds the creature to kind map. Rows naming a missing creature or a kind
// without a definition are dropped. Creatures without the battlemaster flag are kept and reported,
// as are flagged creatures without a row. Creature data is never modified.
func LoadBattlemasters(
	rows []BattlemasterRow, creatures CreatureTable, definitions DefinitionTable, log zerolog.Logger,
) (*Battlemasters, *BattlemasterReport) {
	b := &Battlemasters{byEntry: make(map[uint32]types.MatchTypeID, len(rows))}
	report := &BattlemasterReport{}

	for _, row := range rows {
		c, ok := creatures.Creature(row.Entry)
		if !ok {
			err := eris.Wrapf(ErrConfig, "creature %d does not exist", row.Entry)
			log.Error().Err(err).Uint32("entry", row.Entry).Msg("battlemaster row ignored")
			report.Dropped = append(report.Dropped, RowError{TypeID: row.TypeID, Err: err})
			continue
		}
		if !c.IsBattlemaster() {
			log.Error().Uint32("entry", row.Entry).Msg("creature listed as battlemaster lacks the battlemaster flag")
			report.Violations = append(report.Violations, Violation{Entry: row.Entry, Reason: "missing battlemaster flag"})
		}
		if _, ok := definitions.Definition(row.TypeID); !ok {
			err := eris.Wrapf(ErrConfig, "creature %d offers non-existing type %d", row.Entry, row.TypeID)
			log.Error().Err(err).Uint32("entry", row.Entry).Msg("battlemaster row ignored")
			report.Dropped = append(report.Dropped, RowError{TypeID: row.TypeID, Err: err})
			continue
		}
		b.byEntry[row.Entry] = row.TypeID
	}

	for _, c := range creatures.Creatures() {
		if !c.IsBattlemaster() {
			continue
		}
		if _, ok := b.byEntry[c.Entry]; !ok {
			log.Error().Uint32("entry", c.Entry).Msg("creature has the battlemaster flag but no battlemaster row")
			report.Violations = append(report.Violations, Violation{Entry: c.Entry, Reason: "flagged without battlemaster row"})
		}
	}

	log.Info().Int("loaded", b.Len()).Int("violations", len(report.Violations)).Msg("battlemasters loaded")
	return b, report
}
