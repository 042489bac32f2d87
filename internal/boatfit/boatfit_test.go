package boatfit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilegrid/mapdata/internal/collision"
	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
	"github.com/tilegrid/mapdata/internal/tiletype"
)

// testIndexer builds a small-bounds indexer (base 0) so test coordinates
// stay comfortably inside its validated range; Run always re-validates
// area bounds against the indexer's real range regardless of the
// per-instance validation flag, per spec §4.7 step 1.
func testIndexer(addresses int) *coord.Indexer {
	ix, err := coord.NewIndexerBuilder().
		Scheme(coord.SchemeContiguous).
		XBits(10).XBase(0).
		YBits(10).YBase(0).
		PlaneBits(2).PlaneBase(0).
		Addresses(addresses).
		CapacityBits(32).
		Build()
	if err != nil {
		panic(err)
	}
	return ix
}

// buildOpenWaterPatch marks every tile in [minX..maxX]x[minY..maxY] as
// water and fully pathable (blocking semantics: nothing blocked).
func buildOpenWaterPatch(t *testing.T, minX, maxX, minY, maxY int32) (*collision.Map, *tiletype.Map, *coord.Indexer) {
	indexer := testIndexer(2)
	source := collision.New(sparse.NewRoaring(), indexer, collision.SemanticsBlocking)

	words, err := sparse.NewWordArray(8)
	require.NoError(t, err)
	tiles := tiletype.New(words, testIndexer(1))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			require.NoError(t, tiles.SetTileType(x, y, 0, 1))
		}
	}
	return source, tiles, indexer
}

// Scenario 5: boat fit n=2 on a 3x3 water patch, all interior pathable.
func TestCanFitAt_EvenBoat_FourPlacementsAllPass(t *testing.T) {
	source, tiles, indexer := buildOpenWaterPatch(t, 10, 12, 10, 12)
	validator := indexer.WithValidationEnabled()

	ok, err := canFitAt(source, tiles, validator, 11, 11, 0, 2)
	require.NoError(t, err)
	require.True(t, ok)

	// Each of the four 2x2 placements whose center includes (11,11)
	// passes on its own.
	for _, anchor := range [][2]int32{{10, 10}, {10, 11}, {11, 10}, {11, 11}} {
		fits, err := areaFits(source, tiles, validator, anchor[0], anchor[1], anchor[0]+1, anchor[1]+1, 0)
		require.NoError(t, err)
		require.True(t, fits, "placement anchored at %v", anchor)
	}
}

func TestCanFitAt_OddBoat_FailsWhenEdgeNotPathableTowardCenter(t *testing.T) {
	source, tiles, indexer := buildOpenWaterPatch(t, 10, 12, 10, 12)
	validator := indexer.WithValidationEnabled()

	// Seal the north row's south-facing bit so the area's north edge
	// can no longer path toward the interior.
	require.NoError(t, source.FullBlocking(10, 12, 0, true))
	require.NoError(t, source.FullBlocking(11, 12, 0, true))
	require.NoError(t, source.FullBlocking(12, 12, 0, true))

	ok, err := canFitAt(source, tiles, validator, 11, 11, 0, 3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAreaFits_FailsOnNonWaterTile(t *testing.T) {
	source, tiles, indexer := buildOpenWaterPatch(t, 10, 12, 10, 12)
	require.NoError(t, tiles.SetTileType(11, 11, 0, 0))
	validator := indexer.WithValidationEnabled()

	ok, err := areaFits(source, tiles, validator, 10, 10, 12, 12, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAreaFits_FailsOutOfIndexerRange(t *testing.T) {
	source, tiles, _ := buildOpenWaterPatch(t, 10, 12, 10, 12)
	// The standard world-bounds indexer rejects x=0 outright.
	bounded := coord.ContiguousPreset(2)

	ok, err := areaFits(source, tiles, bounded, 0, 0, 2, 2, 0)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRun_WritesDerivedPathability(t *testing.T) {
	source, tiles, indexer := buildOpenWaterPatch(t, 10, 16, 10, 16)
	out := collision.New(sparse.NewRoaring(), indexer, collision.SemanticsPathable)

	err := Run(context.Background(), Options{
		Source:  source,
		Tiles:   tiles,
		Out:     out,
		Indexer: indexer,
		BoatN:   1,
		Bounds:  Bounds{MinX: 10, MaxX: 16, MinY: 10, MaxY: 16, Planes: []int32{0}},
	})
	require.NoError(t, err)

	n, err := out.PathableNorth(12, 11, 0)
	require.NoError(t, err)
	require.True(t, n, "a 1x1 boat should fit centered one tile north of (12,11)")
}

func TestRun_RejectsNonPositiveBoatSize(t *testing.T) {
	source, tiles, indexer := buildOpenWaterPatch(t, 10, 12, 10, 12)
	out := collision.New(sparse.NewRoaring(), indexer, collision.SemanticsPathable)

	err := Run(context.Background(), Options{
		Source: source, Tiles: tiles, Out: out, Indexer: indexer, BoatN: 0,
		Bounds: Bounds{MinX: 10, MaxX: 12, MinY: 10, MaxY: 12, Planes: []int32{0}},
	})
	require.Error(t, err)
}
