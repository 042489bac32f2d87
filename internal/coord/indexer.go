package coord

import (
	"fmt"

	"github.com/tilegrid/mapdata/internal/mapdataerr"
)

// Scheme selects how an Indexer lays addr out relative to the packed
// coordinate.
type Scheme int

const (
	// SchemeFlagInterleaved places addr in a high "flag" field above the
	// packed coordinate, so the index ranges for different addresses sit
	// far apart (idx = addr<<coordBits | packedCoord).
	SchemeFlagInterleaved Scheme = iota

	// SchemeContiguous places addr as the low field, so a tile's
	// addresses occupy consecutive integers (idx = packedCoord*addressesPerCoord + addr).
	SchemeContiguous
)

// Indexer packs (x, y, plane, addr) into a non-negative index and is the
// single place the grid's coordinate geometry is encoded. It is
// immutable once built; WithValidationEnabled and WithValidationDisabled
// return a modified copy.
type Indexer struct {
	scheme Scheme

	xBits, yBits, planeBits int
	xBase, yBase, planeBase int32

	addressesPerCoord int
	addrBits          int
	capacityBits      int

	validate bool
}

// MaxAddressIndex returns addressesPerCoord - 1, the largest legal addr.
func (ix *Indexer) MaxAddressIndex() uint32 {
	return uint32(ix.addressesPerCoord - 1)
}

// WithValidationEnabled returns a copy of ix with coordinate validation
// turned on.
func (ix *Indexer) WithValidationEnabled() *Indexer {
	cp := *ix
	cp.validate = true
	return &cp
}

// WithValidationDisabled returns a copy of ix with coordinate validation
// turned off (out-of-range inputs wrap instead of failing).
func (ix *Indexer) WithValidationDisabled() *Indexer {
	cp := *ix
	cp.validate = false
	return &cp
}

// coordBits is x_bits + y_bits + plane_bits, the width of packedCoord.
func (ix *Indexer) coordBits() int {
	return ix.xBits + ix.yBits + ix.planeBits
}

func (ix *Indexer) validateCoord(x, y, plane int32, addr uint32) error {
	if !ix.validate {
		return nil
	}

	xMin := ix.xBase + 2
	xMax := ix.xBase + int32(1<<uint(ix.xBits)) - 1 - 2
	if x < xMin || x > xMax {
		return fmt.Errorf("%w: x=%d outside [%d,%d]", mapdataerr.ErrInvalidCoordinate, x, xMin, xMax)
	}

	yMin := ix.yBase + 2
	yMax := ix.yBase + int32(1<<uint(ix.yBits)) - 1 - 2
	if y < yMin || y > yMax {
		return fmt.Errorf("%w: y=%d outside [%d,%d]", mapdataerr.ErrInvalidCoordinate, y, yMin, yMax)
	}

	planeMin := ix.planeBase
	planeMax := ix.planeBase + int32(1<<uint(ix.planeBits)) - 1
	if plane < planeMin || plane > planeMax {
		return fmt.Errorf("%w: plane=%d outside [%d,%d]", mapdataerr.ErrInvalidCoordinate, plane, planeMin, planeMax)
	}

	if addr > ix.MaxAddressIndex() {
		return fmt.Errorf("%w: addr=%d outside [0,%d]", mapdataerr.ErrInvalidCoordinate, addr, ix.MaxAddressIndex())
	}

	return nil
}

func (ix *Indexer) packedCoord(x, y, plane int32) uint32 {
	xOff := uint32(x-ix.xBase) & (1<<uint(ix.xBits) - 1)
	yOff := uint32(y-ix.yBase) & (1<<uint(ix.yBits) - 1)
	planeOff := uint32(plane-ix.planeBase) & (1<<uint(ix.planeBits) - 1)

	return (planeOff << uint(ix.xBits+ix.yBits)) | (yOff << uint(ix.xBits)) | xOff
}

// Pack returns the index for (x, y, plane, addr). With validation
// enabled, out-of-range input returns mapdataerr.ErrInvalidCoordinate;
// with validation disabled, out-of-range input wraps via plain integer
// truncation of the packed bit fields.
func (ix *Indexer) Pack(x, y, plane int32, addr uint32) (uint32, error) {
	if err := ix.validateCoord(x, y, plane, addr); err != nil {
		return 0, err
	}

	packed := ix.packedCoord(x, y, plane)

	switch ix.scheme {
	case SchemeContiguous:
		return packed*uint32(ix.addressesPerCoord) + addr, nil
	default:
		return (addr << uint(ix.coordBits())) | packed, nil
	}
}

// PackWorld is a convenience wrapper over Pack for a World coordinate.
func (ix *Indexer) PackWorld(w World, addr uint32) (uint32, error) {
	return ix.Pack(w.X, w.Y, w.Plane, addr)
}

// Scheme reports which packing scheme this indexer uses.
func (ix *Indexer) Scheme() Scheme { return ix.scheme }

// Bounds returns the validated coordinate range (inclusive), the same
// ±2 margin validateCoord enforces. Callers that need to iterate the
// full addressable range (the dump CLI's batch sweeps) use this instead
// of re-deriving xBase/xBits by hand.
func (ix *Indexer) Bounds() (xMin, xMax, yMin, yMax, planeMin, planeMax int32) {
	xMin = ix.xBase + 2
	xMax = ix.xBase + int32(1<<uint(ix.xBits)) - 1 - 2
	yMin = ix.yBase + 2
	yMax = ix.yBase + int32(1<<uint(ix.yBits)) - 1 - 2
	planeMin = ix.planeBase
	planeMax = ix.planeBase + int32(1<<uint(ix.planeBits)) - 1
	return
}
