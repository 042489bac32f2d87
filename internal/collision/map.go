// Package collision implements the two-directional-bit collision map
// (spec C4): reserved address slots N=0 and E=1 per tile, derived
// cardinal/diagonal pathability, and the "blocked" predicate.
package collision

import (
	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
	"github.com/tilegrid/mapdata/internal/tiledata"
)

const (
	addrNorth uint32 = 0
	addrEast  uint32 = 1
)

// Diagonal flag bit positions within the u8 returned by All, per spec §4.4.
const (
	FlagNW uint8 = 1 << 0
	FlagN  uint8 = 1 << 1
	FlagNE uint8 = 1 << 2
	FlagW  uint8 = 1 << 3
	FlagE  uint8 = 1 << 4
	FlagSW uint8 = 1 << 5
	FlagS  uint8 = 1 << 6
	FlagSE uint8 = 1 << 7

	// None is the sentinel returned by All when every cardinal is
	// unpathable.
	None uint8 = 0
)

// Semantics selects which storage convention the set bit represents.
// Two external data sources disagree on this (spec §4.4), so both are
// modeled as explicit, named variants rather than one implicit default.
type Semantics int

const (
	// SemanticsBlocking is this store's default internal build
	// convention: a set bit means the direction is blocked.
	SemanticsBlocking Semantics = iota

	// SemanticsPathable is the inverse convention: a set bit means the
	// direction is pathable.
	SemanticsPathable
)

// Map is the collision facade over a tiledata.Map. Readers compute
// derived south/west directions and the 8-way flag byte; writers expose
// semantic setter names matching the configured Semantics.
type Map struct {
	data      *tiledata.Map
	semantics Semantics
}

// New wraps container (addressed by indexer) as a collision map with the
// given storage semantics. The roaring backend is the natural choice per
// spec §4.2.1 ("addresses_per_coord = 2"); any sparse.Container works.
func New(container sparse.Container, indexer *coord.Indexer, semantics Semantics) *Map {
	return &Map{data: tiledata.New(container, indexer), semantics: semantics}
}

// Data exposes the underlying generic facade, for the codec.
func (m *Map) Data() *tiledata.Map { return m.data }

// bitPathable converts a raw stored bit to a pathable/not-pathable
// boolean according to the configured Semantics.
func (m *Map) bitPathable(setBit bool) bool {
	if m.semantics == SemanticsPathable {
		return setBit
	}
	return !setBit
}

// PathableNorth reports whether the tile's northward edge is open.
func (m *Map) PathableNorth(x, y, plane int32) (bool, error) {
	set, err := m.data.IsBitSet(x, y, plane, addrNorth)
	if err != nil {
		return false, err
	}
	return m.bitPathable(set), nil
}

// PathableEast reports whether the tile's eastward edge is open.
func (m *Map) PathableEast(x, y, plane int32) (bool, error) {
	set, err := m.data.IsBitSet(x, y, plane, addrEast)
	if err != nil {
		return false, err
	}
	return m.bitPathable(set), nil
}

// PathableSouth derives south from the neighbor's north bit:
// pathable_south(x,y,p) = pathable_north(x, y-1, p).
func (m *Map) PathableSouth(x, y, plane int32) (bool, error) {
	return m.PathableNorth(x, y-1, plane)
}

// PathableWest derives west from the neighbor's east bit:
// pathable_west(x,y,p) = pathable_east(x-1, y, p).
func (m *Map) PathableWest(x, y, plane int32) (bool, error) {
	return m.PathableEast(x-1, y, plane)
}

// IsBlocked reports whether all four cardinals are closed.
func (m *Map) IsBlocked(x, y, plane int32) (bool, error) {
	n, err := m.PathableNorth(x, y, plane)
	if err != nil {
		return false, err
	}
	e, err := m.PathableEast(x, y, plane)
	if err != nil {
		return false, err
	}
	s, err := m.PathableSouth(x, y, plane)
	if err != nil {
		return false, err
	}
	w, err := m.PathableWest(x, y, plane)
	if err != nil {
		return false, err
	}
	return !n && !e && !s && !w, nil
}

// All packs the 8-way walkability flags for (x, y, plane), per spec §4.4:
// a diagonal bit requires both enclosing cardinals and both
// corner-adjacent cardinals to be pathable. Returns None if all four
// cardinals are closed.
func (m *Map) All(x, y, plane int32) (uint8, error) {
	n, err := m.PathableNorth(x, y, plane)
	if err != nil {
		return 0, err
	}
	e, err := m.PathableEast(x, y, plane)
	if err != nil {
		return 0, err
	}
	s, err := m.PathableSouth(x, y, plane)
	if err != nil {
		return 0, err
	}
	w, err := m.PathableWest(x, y, plane)
	if err != nil {
		return 0, err
	}

	if !n && !e && !s && !w {
		return None, nil
	}

	var flags uint8
	if n {
		flags |= FlagN
	}
	if e {
		flags |= FlagE
	}
	if s {
		flags |= FlagS
	}
	if w {
		flags |= FlagW
	}

	if n && e {
		eastAtNorth, err := m.PathableEast(x, y+1, plane)
		if err != nil {
			return 0, err
		}
		northAtEast, err := m.PathableNorth(x+1, y, plane)
		if err != nil {
			return 0, err
		}
		if eastAtNorth && northAtEast {
			flags |= FlagNE
		}
	}

	if n && w {
		westAtNorth, err := m.PathableWest(x, y+1, plane)
		if err != nil {
			return 0, err
		}
		northAtWest, err := m.PathableNorth(x-1, y, plane)
		if err != nil {
			return 0, err
		}
		if westAtNorth && northAtWest {
			flags |= FlagNW
		}
	}

	if s && e {
		eastAtSouth, err := m.PathableEast(x, y-1, plane)
		if err != nil {
			return 0, err
		}
		southAtEast, err := m.PathableSouth(x+1, y, plane)
		if err != nil {
			return 0, err
		}
		if eastAtSouth && southAtEast {
			flags |= FlagSE
		}
	}

	if s && w {
		westAtSouth, err := m.PathableWest(x, y-1, plane)
		if err != nil {
			return 0, err
		}
		southAtWest, err := m.PathableSouth(x-1, y, plane)
		if err != nil {
			return 0, err
		}
		if westAtSouth && southAtWest {
			flags |= FlagSW
		}
	}

	return flags, nil
}

// setBit writes the raw stored bit for addr, converting from a
// pathable/blocked boolean to the configured Semantics.
func (m *Map) setBit(x, y, plane int32, addr uint32, pathable bool) error {
	setValue := !pathable
	if m.semantics == SemanticsPathable {
		setValue = pathable
	}
	if setValue {
		return m.data.SetBit(x, y, plane, addr)
	}
	return m.data.ClearBit(x, y, plane, addr)
}

// NorthBlocking marks the north edge as blocked (sets the stored bit in
// blocking semantics, clears it in pathable semantics).
func (m *Map) NorthBlocking(x, y, plane int32) error {
	return m.setBit(x, y, plane, addrNorth, false)
}

// EastBlocking marks the east edge as blocked.
func (m *Map) EastBlocking(x, y, plane int32) error {
	return m.setBit(x, y, plane, addrEast, false)
}

// SouthBlocking marks the south edge as blocked, by setting the
// neighboring tile's north bit (south is always derived, never stored).
func (m *Map) SouthBlocking(x, y, plane int32) error {
	return m.setBit(x, y-1, plane, addrNorth, false)
}

// WestBlocking marks the west edge as blocked, by setting the
// neighboring tile's east bit.
func (m *Map) WestBlocking(x, y, plane int32) error {
	return m.setBit(x-1, y, plane, addrEast, false)
}

// FullBlocking marks all four edges of (x, y, plane) as blocked when v
// is true, or all four as pathable when v is false.
func (m *Map) FullBlocking(x, y, plane int32, v bool) error {
	if err := m.setBit(x, y, plane, addrNorth, !v); err != nil {
		return err
	}
	if err := m.setBit(x, y, plane, addrEast, !v); err != nil {
		return err
	}
	if err := m.setBit(x, y-1, plane, addrNorth, !v); err != nil {
		return err
	}
	if err := m.setBit(x-1, y, plane, addrEast, !v); err != nil {
		return err
	}
	return nil
}

// SetPathableNorth marks the north edge as pathable.
func (m *Map) SetPathableNorth(x, y, plane int32) error {
	return m.setBit(x, y, plane, addrNorth, true)
}

// SetPathableEast marks the east edge as pathable.
func (m *Map) SetPathableEast(x, y, plane int32) error {
	return m.setBit(x, y, plane, addrEast, true)
}
