package catalog

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/argus-labs/warband/pkg/battle/types"
)

// NPCFlagBattlemaster is the creature flag of npcs that open the match list.
const NPCFlagBattlemaster uint64 = 0x00100000

// DefinitionTable looks up the reference data of a kind.
type DefinitionTable interface {
	Definition(types.MatchTypeID) (*types.Definition, bool)
}

// LocationTable looks up start locations.
type LocationTable interface {
	Location(id uint32) (*types.Location, bool)
}

// Creature is the part of a creature template the battlemaster checks read.
type Creature struct {
	Entry    uint32 `json:"entry"`
	Name     string `json:"name"`
	NPCFlags uint64 `json:"npc_flags"`
}

// IsBattlemaster reports whether the creature carries the battlemaster flag.
func (c *Creature) IsBattlemaster() bool {
	return c.NPCFlags&NPCFlagBattlemaster != 0
}

// CreatureTable looks up creature templates.
type CreatureTable interface {
	Creature(entry uint32) (*Creature, bool)
	Creatures() []*Creature
}

// WorldData is the reference data read from the world data file. It implements every table.
type WorldData struct {
	definitions map[types.MatchTypeID]*types.Definition
	locations   map[uint32]*types.Location
	creatures   map[uint32]*Creature
	order       []uint32

	battlemasters []BattlemasterRow
}

var (
	_ DefinitionTable = (*WorldData)(nil)
	_ LocationTable   = (*WorldData)(nil)
	_ CreatureTable   = (*WorldData)(nil)
)

type worldDataJSON struct {
	Definitions []types.Definition `json:"definitions"`
	Locations   []types.Location   `json:"locations"`
	Creatures   []Creature         `json:"creatures"`

	Battlemasters []BattlemasterRow `json:"battlemasters"`
}

// LoadWorldDataFromFile reads the world data file.
func LoadWorldDataFromFile(path string) (*WorldData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read world data file: %s", path)
	}
	return LoadWorldDataFromJSON(data)
}

// LoadWorldDataFromJSON parses world data. Duplicate ids are rejected.
func LoadWorldDataFromJSON(data []byte) (*WorldData, error) {
	var raw worldDataJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "failed to parse world data JSON")
	}

	w := &WorldData{
		definitions: make(map[types.MatchTypeID]*types.Definition, len(raw.Definitions)),
		locations:   make(map[uint32]*types.Location, len(raw.Locations)),
		creatures:   make(map[uint32]*Creature, len(raw.Creatures)),

		battlemasters: raw.Battlemasters,
	}
	for i := range raw.Definitions {
		d := &raw.Definitions[i]
		if _, exists := w.definitions[d.TypeID]; exists {
			return nil, eris.Errorf("duplicate definition for type %d", d.TypeID)
		}
		w.definitions[d.TypeID] = d
	}
	for i := range raw.Locations {
		l := &raw.Locations[i]
		if _, exists := w.locations[l.ID]; exists {
			return nil, eris.Errorf("duplicate location %d", l.ID)
		}
		w.locations[l.ID] = l
	}
	for i := range raw.Creatures {
		c := &raw.Creatures[i]
		if _, exists := w.creatures[c.Entry]; exists {
			return nil, eris.Errorf("duplicate creature %d", c.Entry)
		}
		w.creatures[c.Entry] = c
		w.order = append(w.order, c.Entry)
	}
	return w, nil
}

func (w *WorldData) Definition(id types.MatchTypeID) (*types.Definition, bool) {
	d, ok := w.definitions[id]
	return d, ok
}

func (w *WorldData) Location(id uint32) (*types.Location, bool) {
	l, ok := w.locations[id]
	return l, ok
}

func (w *WorldData) Creature(entry uint32) (*Creature, bool) {
	c, ok := w.creatures[entry]
	return c, ok
}

// Creatures returns every creature in file order.
func (w *WorldData) Creatures() []*Creature {
	out := make([]*Creature, 0, len(w.order))
	for _, entry := range w.order {
		out = append(out, w.creatures[entry])
	}
	return out
}

// BattlemasterRows returns the battlemaster assignments in file order.
func (w *WorldData) BattlemasterRows() []BattlemasterRow {
	return w.battlemasters
}
