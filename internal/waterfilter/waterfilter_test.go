package waterfilter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
	"github.com/tilegrid/mapdata/internal/tiletype"
)

// testIndexer builds a small-bounds indexer (base 0) with validation
// disabled, so the fixtures can start at x=0/y=0 without tripping the
// 2-tile edge margin that validation enforces.
func testIndexer() *coord.Indexer {
	ix, err := coord.NewIndexerBuilder().
		Scheme(coord.SchemeContiguous).
		XBits(10).XBase(0).
		YBits(10).YBase(0).
		PlaneBits(2).PlaneBase(0).
		Addresses(1).
		CapacityBits(32).
		Validation(false).
		Build()
	if err != nil {
		panic(err)
	}
	return ix
}

func newTileTypeMap(t *testing.T) *tiletype.Map {
	words, err := sparse.NewWordArray(8)
	require.NoError(t, err)
	return tiletype.New(words, testIndexer())
}

func fillRect(t *testing.T, m *tiletype.Map, minX, maxX, minY, maxY int32, tileType uint8) {
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			require.NoError(t, m.SetTileType(x, y, 0, tileType))
		}
	}
}

// Scenario 6: two water bodies of sizes 10 and 6000, threshold 5000.
func TestRun_SuppressesSmallBodyKeepsLargeBody(t *testing.T) {
	source := newTileTypeMap(t)

	// Large body: 60x100 = 6000 tiles.
	fillRect(t, source, 0, 59, 0, 99, 3)
	// Small, disconnected body: 2x5 = 10 tiles, separated by an
	// untouched (tile-type 0) gap column.
	fillRect(t, source, 70, 71, 0, 4, 3)

	out := newTileTypeMap(t)

	err := Run(context.Background(), Options{
		Source:    source,
		Out:       out,
		Bounds:    Bounds{MinX: 0, MaxX: 79, MinY: 0, MaxY: 99, Planes: []int32{0}},
		Threshold: 5000,
	})
	require.NoError(t, err)

	large, err := out.GetTileType(10, 10, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(3), large, "the 6000-tile body survives")

	small, err := out.GetTileType(70, 2, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0), small, "the 10-tile body is suppressed")

	untouched, err := out.GetTileType(65, 50, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0), untouched, "non-water gap stays untouched")
}

func TestRun_DefaultThresholdAppliesWhenUnset(t *testing.T) {
	source := newTileTypeMap(t)
	fillRect(t, source, 0, 1, 0, 1, 1) // 4-tile body, well below default 5000

	out := newTileTypeMap(t)
	err := Run(context.Background(), Options{
		Source: source,
		Out:    out,
		Bounds: Bounds{MinX: 0, MaxX: 5, MinY: 0, MaxY: 5, Planes: []int32{0}},
	})
	require.NoError(t, err)

	tt, err := out.GetTileType(0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(0), tt)
}

func TestRun_SinglePlaneIsolation(t *testing.T) {
	source := newTileTypeMap(t)
	fillRect(t, source, 0, 99, 0, 99, 2) // large body on plane 0 only

	out := newTileTypeMap(t)
	err := Run(context.Background(), Options{
		Source:    source,
		Out:       out,
		Bounds:    Bounds{MinX: 0, MaxX: 99, MinY: 0, MaxY: 99, Planes: []int32{0, 1}},
		Threshold: 10,
	})
	require.NoError(t, err)

	onPlane0, err := out.GetTileType(5, 5, 0)
	require.NoError(t, err)
	require.Equal(t, uint8(2), onPlane0)

	onPlane1, err := out.GetTileType(5, 5, 1)
	require.NoError(t, err)
	require.Equal(t, uint8(0), onPlane1, "plane 1 was never populated in source")
}
