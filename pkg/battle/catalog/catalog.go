// Package catalog loads the match templates and battlemaster assignments and indexes them.
package catalog

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/argus-labs/warband/pkg/battle/selection"
	"github.com/argus-labs/warband/pkg/battle/types"
)

// ErrConfig marks a template or battlemaster row that references data that does not exist.
var ErrConfig = eris.New("invalid configuration row")

// Catalog holds the loaded templates. It is read-only after Load returns.
type Catalog struct {
	templates map[types.MatchTypeID]*types.Template
	byMap     map[int32]*types.Template
}

func newCatalog() *Catalog {
	return &Catalog{
		templates: make(map[types.MatchTypeID]*types.Template),
		byMap:     make(map[int32]*types.Template),
	}
}

// Get retrieves the template of a kind.
func (c *Catalog) Get(id types.MatchTypeID) (*types.Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

// ByMap retrieves the template played on a map. Only single-map templates are indexed.
func (c *Catalog) ByMap(mapID int32) (*types.Template, bool) {
	t, ok := c.byMap[mapID]
	return t, ok
}

// Templates returns every template ordered by kind.
func (c *Catalog) Templates() []*types.Template {
	out := make([]*types.Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *types.Template) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Candidates lists the kinds playable on the maps of a template, weighted by their template
// weight. Maps without a single-map template are skipped.
func (c *Catalog) Candidates(id types.MatchTypeID) []selection.Candidate[types.MatchTypeID] {
	t, ok := c.templates[id]
	if !ok {
		return nil
	}
	out := make([]selection.Candidate[types.MatchTypeID], 0, len(t.MapIDs))
	for _, mapID := range t.MapIDs {
		if mt, ok := c.byMap[mapID]; ok {
			out = append(out, selection.Candidate[types.MatchTypeID]{Value: mt.ID, Weight: float64(mt.Weight)})
		}
	}
	return out
}
