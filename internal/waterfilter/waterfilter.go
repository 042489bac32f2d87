// Package waterfilter implements the per-plane flood-fill water-body
// filter (spec C8): any 4-connected water body smaller than a size
// threshold is suppressed (set to tile-type 0) in the output map; larger
// bodies are copied through unchanged.
package waterfilter

import (
	"context"
	"fmt"

	"github.com/tilegrid/mapdata/internal/mapdataerr"
	"github.com/tilegrid/mapdata/internal/metrics"
	"github.com/tilegrid/mapdata/internal/sparse"
	"github.com/tilegrid/mapdata/internal/tiletype"
)

// DefaultThreshold is the default minimum surviving body size (spec §4.8).
const DefaultThreshold = 5000

// Bounds describes the X/Y range and set of planes to scan. Planes are
// processed sequentially: each is independent, but the per-plane
// visited/filter-out bitmaps are sized to the whole X/Y range and are
// large enough that running every plane concurrently is not worth the
// memory (spec §4.8).
type Bounds struct {
	MinX, MaxX int32
	MinY, MaxY int32
	Planes     []int32
}

// ProgressFunc is called after each completed plane.
type ProgressFunc func(donePlanes, totalPlanes int)

// Options bundles a Run invocation's parameters.
type Options struct {
	Source    *tiletype.Map
	Out       *tiletype.Map
	Bounds    Bounds
	Threshold int // bodies with fewer tiles than this are suppressed; <=0 means DefaultThreshold
	Metrics   *metrics.Registry
	Progress  ProgressFunc
}

type point struct{ x, y int32 }

// Run scans every plane in opts.Bounds, flood-fills each connected water
// body, and copies every tile whose body size is >= threshold into
// opts.Out (bodies below threshold read as tile-type 0 in the output).
// Cancellation is checked once per plane, per spec §5's
// worker-join-barrier model; an interrupted run returns
// mapdataerr.ErrCancellationRequested and opts.Out's partial contents
// must not be saved.
func Run(ctx context.Context, opts Options) error {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	xRange := int64(opts.Bounds.MaxX-opts.Bounds.MinX) + 1
	pack := func(x, y int32) uint32 {
		return uint32(int64(y-opts.Bounds.MinY)*xRange + int64(x-opts.Bounds.MinX))
	}

	for planeIdx, plane := range opts.Bounds.Planes {
		if err := ctx.Err(); err != nil {
			return mapdataerr.ErrCancellationRequested
		}

		if err := runPlane(opts, plane, pack, threshold); err != nil {
			return err
		}

		if opts.Progress != nil {
			opts.Progress(planeIdx+1, len(opts.Bounds.Planes))
		}
	}
	return nil
}

func runPlane(opts Options, plane int32, pack func(x, y int32) uint32, threshold int) error {
	visited := sparse.NewBitSet()
	filterOut := sparse.NewBitSet()

	for x := opts.Bounds.MinX; x <= opts.Bounds.MaxX; x++ {
		for y := opts.Bounds.MinY; y <= opts.Bounds.MaxY; y++ {
			idx := pack(x, y)
			if visited.Contains(idx) {
				continue
			}

			t, err := opts.Source.GetTileType(x, y, plane)
			if err != nil {
				return err
			}
			if t == 0 {
				visited.Add(idx)
				continue
			}

			body, err := floodFill(opts, plane, pack, visited, x, y)
			if err != nil {
				return err
			}

			if opts.Metrics != nil {
				opts.Metrics.WaterBodiesFound.Inc()
			}

			if len(body) < threshold {
				if opts.Metrics != nil {
					opts.Metrics.WaterBodiesFiltered.Inc()
				}
				for _, memberIdx := range body {
					filterOut.Add(memberIdx)
				}
			}
		}
	}

	for x := opts.Bounds.MinX; x <= opts.Bounds.MaxX; x++ {
		for y := opts.Bounds.MinY; y <= opts.Bounds.MaxY; y++ {
			t, err := opts.Source.GetTileType(x, y, plane)
			if err != nil {
				return err
			}
			if t == 0 || filterOut.Contains(pack(x, y)) {
				continue
			}
			if err := opts.Out.SetTileType(x, y, plane, t); err != nil {
				return fmt.Errorf("waterfilter: write surviving tile: %w", err)
			}
		}
	}

	return nil
}

// floodFill enumerates the 4-connected water body containing (startX,
// startY), marking every visited tile (water or not) in visited so the
// outer scan never revisits it.
func floodFill(opts Options, plane int32, pack func(x, y int32) uint32, visited *sparse.BitSet, startX, startY int32) ([]uint32, error) {
	startIdx := pack(startX, startY)
	visited.Add(startIdx)

	queue := []point{{startX, startY}}
	body := []uint32{startIdx}

	neighbors := [4]point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, d := range neighbors {
			nx, ny := cur.x+d.x, cur.y+d.y
			if nx < opts.Bounds.MinX || nx > opts.Bounds.MaxX || ny < opts.Bounds.MinY || ny > opts.Bounds.MaxY {
				continue
			}

			idx := pack(nx, ny)
			if visited.Contains(idx) {
				continue
			}

			t, err := opts.Source.GetTileType(nx, ny, plane)
			if err != nil {
				return nil, err
			}
			visited.Add(idx)
			if t == 0 {
				continue
			}

			body = append(body, idx)
			queue = append(queue, point{nx, ny})
		}
	}

	return body, nil
}
