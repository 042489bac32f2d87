package coord

import (
	"fmt"
	"math/bits"

	"github.com/tilegrid/mapdata/internal/mapdataerr"
)

// Builder constructs an Indexer from named parameters, validating the
// combined configuration at Build time rather than failing midway
// through a chain of setters.
type Builder struct {
	scheme Scheme

	xBits, yBits, planeBits int
	xBase, yBase, planeBase int32

	addressesPerCoord int
	capacityBits      int

	validate bool
}

// NewIndexerBuilder starts a builder with capacity=32 and validation
// enabled; every other field must be set explicitly.
func NewIndexerBuilder() *Builder {
	return &Builder{
		capacityBits: 32,
		validate:     true,
	}
}

func (b *Builder) Scheme(s Scheme) *Builder { b.scheme = s; return b }

func (b *Builder) XBits(bits int) *Builder     { b.xBits = bits; return b }
func (b *Builder) XBase(base int32) *Builder   { b.xBase = base; return b }
func (b *Builder) YBits(bits int) *Builder     { b.yBits = bits; return b }
func (b *Builder) YBase(base int32) *Builder   { b.yBase = base; return b }
func (b *Builder) PlaneBits(bits int) *Builder { b.planeBits = bits; return b }
func (b *Builder) PlaneBase(base int32) *Builder { b.planeBase = base; return b }

func (b *Builder) Addresses(n int) *Builder       { b.addressesPerCoord = n; return b }
func (b *Builder) CapacityBits(n int) *Builder    { b.capacityBits = n; return b }
func (b *Builder) Validation(enabled bool) *Builder { b.validate = enabled; return b }

// Build validates the combined configuration and returns the Indexer, or
// mapdataerr.ErrInvalidConfiguration if the bit widths cannot fit the
// configured capacity.
func (b *Builder) Build() (*Indexer, error) {
	if b.xBits <= 0 || b.yBits <= 0 || b.planeBits <= 0 {
		return nil, fmt.Errorf("%w: x_bits, y_bits and plane_bits must be positive", mapdataerr.ErrInvalidConfiguration)
	}
	if b.addressesPerCoord <= 0 {
		return nil, fmt.Errorf("%w: addresses_per_coord must be positive", mapdataerr.ErrInvalidConfiguration)
	}
	if b.capacityBits != 31 && b.capacityBits != 32 {
		return nil, fmt.Errorf("%w: capacity_bits must be 31 or 32, got %d", mapdataerr.ErrInvalidConfiguration, b.capacityBits)
	}

	coordBits := b.xBits + b.yBits + b.planeBits
	if coordBits > b.capacityBits {
		return nil, fmt.Errorf("%w: x_bits+y_bits+plane_bits=%d exceeds capacity_bits=%d",
			mapdataerr.ErrInvalidConfiguration, coordBits, b.capacityBits)
	}

	maxAddresses := 1 << uint(b.capacityBits-coordBits)
	if b.addressesPerCoord > maxAddresses {
		return nil, fmt.Errorf("%w: addresses_per_coord=%d exceeds 2^(capacity_bits-coord_bits)=%d",
			mapdataerr.ErrInvalidConfiguration, b.addressesPerCoord, maxAddresses)
	}

	addrBits := bits.Len(uint(b.addressesPerCoord - 1))
	if addrBits == 0 {
		addrBits = 1
	}

	return &Indexer{
		scheme:            b.scheme,
		xBits:             b.xBits,
		yBits:             b.yBits,
		planeBits:         b.planeBits,
		xBase:             b.xBase,
		yBase:             b.yBase,
		planeBase:         b.planeBase,
		addressesPerCoord: b.addressesPerCoord,
		addrBits:          addrBits,
		capacityBits:      b.capacityBits,
		validate:          b.validate,
	}, nil
}

// CollisionPreset returns the flag-interleaved indexer used for the
// collision map's two reserved address slots (N=0, E=1): x_bits=14,
// y_bits=14, plane_bits=2, addresses=2.
func CollisionPreset() *Indexer {
	ix, err := NewIndexerBuilder().
		Scheme(SchemeFlagInterleaved).
		XBits(14).YBits(14).PlaneBits(2).
		Addresses(2).
		CapacityBits(32).
		Build()
	if err != nil {
		panic(fmt.Sprintf("coord: invalid built-in collision preset: %v", err))
	}
	return ix
}

// ContiguousPreset returns the cache-contiguous indexer with the
// standard world bounds (x in [480,4575], y in [0,16383], plane in
// [0,3]) and the given number of addresses per coordinate (2 for
// collision-shaped data, 8 for wider per-tile payloads).
func ContiguousPreset(addressesPerCoord int) *Indexer {
	ix, err := NewIndexerBuilder().
		Scheme(SchemeContiguous).
		XBits(12).XBase(480).
		YBits(14).YBase(0).
		PlaneBits(2).PlaneBase(0).
		Addresses(addressesPerCoord).
		CapacityBits(32).
		Build()
	if err != nil {
		panic(fmt.Sprintf("coord: invalid built-in contiguous preset: %v", err))
	}
	return ix
}
