package types

// MaxMapsPerKind bounds the map list of a definition.
const MaxMapsPerKind = 16

// Location is a resolved start position.
type Location struct {
	ID          uint32  `json:"id"`
	MapID       int32   `json:"map_id"`
	X           float32 `json:"x"`
	Y           float32 `json:"y"`
	Z           float32 `json:"z"`
	Orientation float32 `json:"orientation"`
}

// Definition is the static per-kind reference data a template row is joined with.
type Definition struct {
	TypeID      MatchTypeID `json:"type_id"`
	IsArena     bool        `json:"is_arena"`
	MinLevel    uint8       `json:"min_level"`
	MaxLevel    uint8       `json:"max_level"`
	MinTeamSize uint16      `json:"min_team_size"`
	MaxTeamSize uint16      `json:"max_team_size"`
	// MapIDs lists the maps the kind can be played on. A -1 entry ends the list.
	MapIDs []int32 `json:"map_ids"`
}

// Maps returns the map ids up to the first -1 terminator.
func (d *Definition) Maps() []int32 {
	for i, id := range d.MapIDs {
		if id == -1 || i == MaxMapsPerKind {
			return d.MapIDs[:i]
		}
	}
	return d.MapIDs
}

// Template is a loaded, validated match template. It is immutable once registered.
type Template struct {
	ID                 MatchTypeID
	IsArena            bool
	MinLevel           uint8
	MaxLevel           uint8
	MinTeamSize        uint16
	MaxTeamSize        uint16
	Weight             uint8
	MapIDs             []int32
	StartLocations     [TeamCount]*Location
	MaxStartDistanceSq float32
	ScriptName         string
	HolidayLinked      bool
}

// SingleMap reports the map id when the template can only be played on one map.
func (t *Template) SingleMap() (int32, bool) {
	if len(t.MapIDs) == 1 {
		return t.MapIDs[0], true
	}
	return 0, false
}
