// Package boatfit implements the geometric boat-fit predicate (spec
// C7): given a collision map and a tile-type map, it derives a new
// collision map whose pathable_north/pathable_east bits report whether
// a boat of a given edge length can be centered one tile north/east,
// fanning the sweep out in parallel across disjoint X-strips.
package boatfit

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tilegrid/mapdata/internal/collision"
	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/mapdataerr"
	"github.com/tilegrid/mapdata/internal/metrics"
	"github.com/tilegrid/mapdata/internal/tiletype"
)

// Bounds describes the X/Y range and set of planes to sweep.
type Bounds struct {
	MinX, MaxX int32
	MinY, MaxY int32
	Planes     []int32
}

// ProgressFunc is called after each completed X column with the number
// of columns done and the total, so a caller can drive a progress bar
// without this package depending on one directly (spec §1 names the
// progress bar as an external collaborator).
type ProgressFunc func(done, total int)

// Options bundles a Run invocation's parameters.
type Options struct {
	Source  *collision.Map // the collision map the fit check reads
	Tiles   *tiletype.Map  // the tile-type map the water check reads
	Out     *collision.Map // the derived collision map Run writes into
	Indexer *coord.Indexer // used to validate area bounds, regardless of Out's own validation setting
	BoatN   int            // boat edge length, n >= 1
	Bounds  Bounds
	Metrics *metrics.Registry // optional; nil disables instrumentation
	Progress ProgressFunc      // optional
}

// Run fit-checks every (x, y, plane) in opts.Bounds and writes the
// derived pathable_north/pathable_east bits into opts.Out. Work is
// partitioned by X column: each goroutine owns a disjoint strip of Out,
// so no synchronization beyond Out's own atomic-CAS leaf words is
// needed at the strip boundary (spec §4.7, §5). Cancellation is checked
// once per X column, per spec §5's worker-join-barrier model; an
// interrupted run returns mapdataerr.ErrCancellationRequested and Out's
// partial contents must not be saved.
func Run(ctx context.Context, opts Options) error {
	if opts.BoatN < 1 {
		return fmt.Errorf("%w: boat size must be >= 1, got %d", mapdataerr.ErrInvalidConfiguration, opts.BoatN)
	}

	validator := opts.Indexer.WithValidationEnabled()
	totalColumns := int(opts.Bounds.MaxX-opts.Bounds.MinX) + 1

	var progressMu sync.Mutex
	completed := 0
	reportProgress := func() {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		completed++
		done := completed
		progressMu.Unlock()
		opts.Progress(done, totalColumns)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	boatSizeLabel := fmt.Sprintf("%d", opts.BoatN)

	for x := opts.Bounds.MinX; x <= opts.Bounds.MaxX; x++ {
		x := x
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return mapdataerr.ErrCancellationRequested
			}

			for _, plane := range opts.Bounds.Planes {
				for y := opts.Bounds.MinY; y <= opts.Bounds.MaxY; y++ {
					if err := fitColumnTile(opts, validator, x, y, plane, boatSizeLabel); err != nil {
						return err
					}
				}
			}

			reportProgress()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

func fitColumnTile(opts Options, validator *coord.Indexer, x, y, plane int32, boatSizeLabel string) error {
	northFits, err := canFitAt(opts.Source, opts.Tiles, validator, x, y+1, plane, opts.BoatN)
	if err != nil {
		return err
	}
	if opts.Metrics != nil {
		opts.Metrics.BoatPlacementsChecked.WithLabelValues(boatSizeLabel).Inc()
	}
	if northFits {
		if err := opts.Out.SetPathableNorth(x, y, plane); err != nil {
			return err
		}
		if opts.Metrics != nil {
			opts.Metrics.BoatPlacementsFitted.WithLabelValues(boatSizeLabel).Inc()
		}
	}

	eastFits, err := canFitAt(opts.Source, opts.Tiles, validator, x+1, y, plane, opts.BoatN)
	if err != nil {
		return err
	}
	if opts.Metrics != nil {
		opts.Metrics.BoatPlacementsChecked.WithLabelValues(boatSizeLabel).Inc()
	}
	if eastFits {
		if err := opts.Out.SetPathableEast(x, y, plane); err != nil {
			return err
		}
		if opts.Metrics != nil {
			opts.Metrics.BoatPlacementsFitted.WithLabelValues(boatSizeLabel).Inc()
		}
	}

	return nil
}

// canFitAt implements spec §4.7's fit predicate at (cx, cy, plane): for
// odd n, the single centered n*n area; for even n, the four overlapping
// n*n areas whose center 2x2 block includes (cx, cy), passing if any one
// of the four passes.
func canFitAt(source *collision.Map, tiles *tiletype.Map, validator *coord.Indexer, cx, cy, plane int32, n int) (bool, error) {
	if n%2 == 1 {
		anchorX := cx - int32(n/2)
		anchorY := cy - int32(n/2)
		return areaFits(source, tiles, validator, anchorX, anchorY, anchorX+int32(n)-1, anchorY+int32(n)-1, plane)
	}

	half := int32(n / 2)
	for _, dx := range [2]int32{0, 1} {
		for _, dy := range [2]int32{0, 1} {
			anchorX := cx - half + dx
			anchorY := cy - half + dy
			ok, err := areaFits(source, tiles, validator, anchorX, anchorY, anchorX+int32(n)-1, anchorY+int32(n)-1, plane)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

// areaFits checks every tile of [minX..maxX] x [minY..maxY] on plane:
// in range, water, and pathable toward the area's interior.
func areaFits(source *collision.Map, tiles *tiletype.Map, validator *coord.Indexer, minX, minY, maxX, maxY, plane int32) (bool, error) {
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			if _, err := validator.Pack(x, y, plane, 0); err != nil {
				return false, nil
			}

			water, err := tiles.IsWater(x, y, plane)
			if err != nil {
				return false, err
			}
			if !water {
				return false, nil
			}

			ok, err := tilePathableTowardInterior(source, x, y, plane, minX, minY, maxX, maxY)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

// tilePathableTowardInterior implements spec §4.7 step 3: interior
// tiles need all four cardinals pathable; edge tiles need the cardinal
// pointing back into the area; corner tiles (two edges) need both
// inward cardinals. A 1x1 area touches every edge at once, which
// collapses to the same "need all four" requirement as an interior
// tile.
func tilePathableTowardInterior(source *collision.Map, x, y, plane, minX, minY, maxX, maxY int32) (bool, error) {
	isWest := x == minX
	isEast := x == maxX
	isSouth := y == minY
	isNorth := y == maxY
	interior := !isWest && !isEast && !isSouth && !isNorth

	needNorth := interior || isSouth
	needSouth := interior || isNorth
	needEast := interior || isWest
	needWest := interior || isEast

	if needNorth {
		ok, err := source.PathableNorth(x, y, plane)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	if needSouth {
		ok, err := source.PathableSouth(x, y, plane)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	if needEast {
		ok, err := source.PathableEast(x, y, plane)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	if needWest {
		ok, err := source.PathableWest(x, y, plane)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
