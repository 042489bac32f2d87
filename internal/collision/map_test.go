package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
)

func newTestMap() *Map {
	return New(sparse.NewRoaring(), coord.ContiguousPreset(2), SemanticsBlocking)
}

// newUnboundedMap disables coordinate validation so diagonal-formula
// tests can use small, easy-to-read coordinates without tripping the
// standard world bounds' x_base/y_base margins.
func newUnboundedMap() *Map {
	return New(sparse.NewRoaring(), coord.ContiguousPreset(2).WithValidationDisabled(), SemanticsBlocking)
}

// Scenario 1: empty map.
func TestEmptyMap_EverythingPathable(t *testing.T) {
	m := newTestMap()

	n, err := m.PathableNorth(600, 100, 0)
	require.NoError(t, err)
	require.True(t, n, "blocking semantics: unset bit means pathable")

	all, err := m.All(600, 100, 0)
	require.NoError(t, err)
	require.NotEqual(t, None, all, "all cardinals pathable is not the None sentinel")
}

func TestEmptyMap_BlockedIsFalse(t *testing.T) {
	m := newTestMap()

	blocked, err := m.IsBlocked(600, 100, 0)
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestNorthBlocking_MakesNorthUnpathable(t *testing.T) {
	m := newTestMap()

	require.NoError(t, m.NorthBlocking(600, 100, 0))

	n, err := m.PathableNorth(600, 100, 0)
	require.NoError(t, err)
	require.False(t, n)
}

// I6: south derives from the neighbor's north bit.
func TestDerivedSouth_MatchesNeighborNorth(t *testing.T) {
	m := newTestMap()
	require.NoError(t, m.NorthBlocking(600, 99, 0))

	s, err := m.PathableSouth(600, 100, 0)
	require.NoError(t, err)
	n, err := m.PathableNorth(600, 99, 0)
	require.NoError(t, err)
	require.Equal(t, n, s)
}

// I6: west derives from the neighbor's east bit.
func TestDerivedWest_MatchesNeighborEast(t *testing.T) {
	m := newTestMap()
	require.NoError(t, m.EastBlocking(599, 100, 0))

	w, err := m.PathableWest(600, 100, 0)
	require.NoError(t, err)
	e, err := m.PathableEast(599, 100, 0)
	require.NoError(t, err)
	require.Equal(t, e, w)
}

// FullBlocking seals all four sides; IsBlocked then reports true.
func TestFullBlocking_SealsTile(t *testing.T) {
	m := newTestMap()
	require.NoError(t, m.FullBlocking(600, 100, 0, true))

	blocked, err := m.IsBlocked(600, 100, 0)
	require.NoError(t, err)
	require.True(t, blocked)
}

// Scenario 4 / I7: NE requires both cardinals and both corner-adjacent
// cardinals.
func TestDiagonalNE_RequiresCornerAdjacency(t *testing.T) {
	m := newUnboundedMap()
	// default blocking semantics: everything starts pathable, so first
	// block every direction, then selectively open exactly the four
	// bits the NE formula needs.
	for _, p := range [][2]int32{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		require.NoError(t, m.FullBlocking(p[0], p[1], 0, true))
	}

	require.NoError(t, m.SetPathableNorth(0, 0, 0))
	require.NoError(t, m.SetPathableEast(0, 0, 0))
	require.NoError(t, m.SetPathableEast(0, 1, 0))
	require.NoError(t, m.SetPathableNorth(1, 0, 0))

	all, err := m.All(0, 0, 0)
	require.NoError(t, err)
	require.NotZero(t, all&FlagNE)
}

func TestDiagonalNE_ClearWithoutCornerAdjacency(t *testing.T) {
	m := newUnboundedMap()
	for _, p := range [][2]int32{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		require.NoError(t, m.FullBlocking(p[0], p[1], 0, true))
	}

	require.NoError(t, m.SetPathableNorth(0, 0, 0))
	require.NoError(t, m.SetPathableEast(0, 0, 0))
	require.NoError(t, m.SetPathableEast(0, 1, 0))
	// pathable_north(1,0,0) stays false (blocked): NE must stay clear.

	all, err := m.All(0, 0, 0)
	require.NoError(t, err)
	require.Zero(t, all&FlagNE)
}

// I8: all == None iff all four cardinals are false.
func TestAll_NoneSentinel(t *testing.T) {
	m := newTestMap()
	require.NoError(t, m.FullBlocking(600, 100, 0, true))

	all, err := m.All(600, 100, 0)
	require.NoError(t, err)
	require.Equal(t, None, all)
}

func TestPathableSemantics_SetBitMeansPathable(t *testing.T) {
	m := New(sparse.NewBitSet(), coord.ContiguousPreset(2), SemanticsPathable)

	n, err := m.PathableNorth(600, 100, 0)
	require.NoError(t, err)
	require.False(t, n, "pathable semantics: unset bit means blocked")

	require.NoError(t, m.SetPathableNorth(600, 100, 0))
	n, err = m.PathableNorth(600, 100, 0)
	require.NoError(t, err)
	require.True(t, n)
}
