package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-labs/warband/pkg/battle/catalog"
	"github.com/argus-labs/warband/pkg/battle/types"
)

func TestLoadWorldData(t *testing.T) {
	t.Parallel()

	world := loadWorld(t)

	def, ok := world.Definition(types.MatchTypeAA)
	require.True(t, ok)
	assert.True(t, def.IsArena)
	assert.Equal(t, []int32{559, 562, 572, 617, 618}, def.Maps())

	loc, ok := world.Location(1103)
	require.True(t, ok)
	assert.Equal(t, int32(566), loc.MapID)

	_, ok = world.Location(0)
	assert.False(t, ok)

	c, ok := world.Creature(2302)
	require.True(t, ok)
	assert.False(t, c.IsBattlemaster())
	assert.Len(t, world.Creatures(), 5)
	assert.Equal(t, uint32(347), world.Creatures()[0].Entry)
	assert.Len(t, world.BattlemasterRows(), 6)
}

func TestLoadWorldData_Errors(t *testing.T) {
	t.Parallel()

	_, err := catalog.LoadWorldDataFromFile("testdata/missing.json")
	require.Error(t, err)

	_, err = catalog.LoadWorldDataFromJSON([]byte(`{"definitions": [`))
	require.Error(t, err)

	_, err = catalog.LoadWorldDataFromJSON([]byte(`{"locations": [{"id": 1}, {"id": 1}]}`))
	require.Error(t, err)

	_, err = catalog.LoadWorldDataFromJSON([]byte(`{"definitions": [{"type_id": 2}, {"type_id": 2}]}`))
	require.Error(t, err)

	_, err = catalog.LoadWorldDataFromJSON([]byte(`{"creatures": [{"entry": 5}, {"entry": 5}]}`))
	require.Error(t, err)
}

func TestLoadBattlemasters(t *testing.T) {
	t.Parallel()

	world := loadWorld(t)
	before := world.Creatures()[4].NPCFlags

	bm, report := catalog.LoadBattlemasters(world.BattlemasterRows(), world, world, zerologNop())

	assert.Equal(t, 4, bm.Len())
	id, ok := bm.KindOf(907)
	require.True(t, ok)
	assert.Equal(t, types.MatchTypeWS, id, "a later row for an unknown kind does not replace the entry")

	id, ok = bm.KindOf(2302)
	require.True(t, ok, "creatures without the flag are kept")
	assert.Equal(t, types.MatchTypeWS, id)

	_, ok = bm.KindOf(9999)
	assert.False(t, ok)

	assert.Len(t, report.Dropped, 2)
	assert.ElementsMatch(t, []catalog.Violation{
		{Entry: 2302, Reason: "missing battlemaster flag"},
		{Entry: 4000, Reason: "flagged without battlemaster row"},
	}, report.Violations)

	assert.Equal(t, before, world.Creatures()[4].NPCFlags, "creature flags are not modified")
}
