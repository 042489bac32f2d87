// Package keeparea implements the keep-area overlay (spec C9): a static
// list of axis-aligned rectangles used to splice authoritative,
// pre-built collision data into an otherwise freshly dumped map.
package keeparea

import (
	"fmt"

	"github.com/tilegrid/mapdata/internal/collision"
	"github.com/tilegrid/mapdata/internal/mapdataerr"
)

const (
	addrNorth uint32 = 0
	addrEast  uint32 = 1
)

// Rect is one axis-aligned keep-area rectangle, inclusive on every bound.
type Rect struct {
	MinX, MinY int32
	MaxX, MaxY int32
	Plane      int32
}

// Contains reports whether (x, y, plane) lies within r.
func (r Rect) Contains(x, y, plane int32) bool {
	return plane == r.Plane && x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Overlay holds a static rectangle list and the baseline map to copy
// from when a tile falls inside one of them.
type Overlay struct {
	baseline *collision.Map
	rects    []Rect
}

// New builds an Overlay that splices baseline's N/E bits into any writer
// for tiles covered by rects. The rectangle list is validated eagerly
// (min <= max) so a malformed config fails at construction, not deep
// into a batch run.
func New(baseline *collision.Map, rects []Rect) (*Overlay, error) {
	for i, r := range rects {
		if r.MinX > r.MaxX || r.MinY > r.MaxY {
			return nil, fmt.Errorf("%w: keep-area rect %d has min > max", mapdataerr.ErrInvalidConfiguration, i)
		}
	}
	return &Overlay{baseline: baseline, rects: rects}, nil
}

// OverrideTileCollisionIfApplicable implements spec §4.9: if (x, y,
// plane) lies in any configured rectangle, it copies the baseline map's
// raw N and E bits into writer and returns true. Otherwise it leaves
// writer untouched and returns false. The copy is of the raw stored
// bits, not a Semantics-reinterpreted pathable/blocked value, so it is
// correct regardless of which Semantics writer and baseline share.
func (o *Overlay) OverrideTileCollisionIfApplicable(writer *collision.Map, x, y, plane int32) (bool, error) {
	applies := false
	for _, r := range o.rects {
		if r.Contains(x, y, plane) {
			applies = true
			break
		}
	}
	if !applies {
		return false, nil
	}

	if err := copyBit(o.baseline, writer, x, y, plane, addrNorth); err != nil {
		return false, err
	}
	if err := copyBit(o.baseline, writer, x, y, plane, addrEast); err != nil {
		return false, err
	}
	return true, nil
}

func copyBit(baseline, writer *collision.Map, x, y, plane int32, addr uint32) error {
	set, err := baseline.Data().IsBitSet(x, y, plane, addr)
	if err != nil {
		return err
	}
	if set {
		return writer.Data().SetBit(x, y, plane, addr)
	}
	return writer.Data().ClearBit(x, y, plane, addr)
}
