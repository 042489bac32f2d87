// Package tiledata implements the uniform coordinate -> N-bit-datum
// read/write facade (spec C3) shared by the collision and tile-type
// maps: any sparse.Container, addressed through a coord.Indexer.
package tiledata

import (
	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
)

// wideGetter is implemented by backends that can read several
// consecutive addresses of a tile in one access (currently
// sparse.WordArray, via its leaf word); Map.GetAllBits uses it when
// available instead of one Get per address.
type wideGetter interface {
	GetWindow(i uint32, count int) uint64
}

// Map is the generic reader/writer over a sparse.Container addressed by
// a coord.Indexer. Collision and tile-type maps are thin wrappers around
// one of these with a fixed set of addresses.
type Map struct {
	container sparse.Container
	indexer   *coord.Indexer
}

// New builds a Map over container, addressed by indexer.
func New(container sparse.Container, indexer *coord.Indexer) *Map {
	return &Map{container: container, indexer: indexer}
}

// Indexer returns the indexer this map was constructed with.
func (m *Map) Indexer() *coord.Indexer { return m.indexer }

// Container returns the underlying sparse container, for codec access.
func (m *Map) Container() sparse.Container { return m.container }

// IsBitSet reports whether the single-bit address addr is set at
// (x, y, plane).
func (m *Map) IsBitSet(x, y, plane int32, addr uint32) (bool, error) {
	idx, err := m.indexer.Pack(x, y, plane, addr)
	if err != nil {
		return false, err
	}
	return m.container.Get(idx) != 0, nil
}

// GetAllBits packs every address of (x, y, plane) into a single u8,
// address 0 at bit 0. Backends able to return a whole tile's worth of
// addresses in one access (the word array, via GetWindow) are used
// directly; others fall back to one Get per address, which is still
// O(number_of_addresses) as spec'd.
func (m *Map) GetAllBits(x, y, plane int32) (uint8, error) {
	maxAddr := m.indexer.MaxAddressIndex()

	if wg, ok := m.container.(wideGetter); ok && m.indexer.Scheme() == coord.SchemeContiguous {
		idx, err := m.indexer.Pack(x, y, plane, 0)
		if err != nil {
			return 0, err
		}
		return uint8(wg.GetWindow(idx, int(maxAddr)+1)), nil
	}

	var result uint8
	for addr := uint32(0); addr <= maxAddr; addr++ {
		set, err := m.IsBitSet(x, y, plane, addr)
		if err != nil {
			return 0, err
		}
		if set {
			result |= 1 << addr
		}
	}
	return result, nil
}

// SetBit sets addr's bit at (x, y, plane).
func (m *Map) SetBit(x, y, plane int32, addr uint32) error {
	idx, err := m.indexer.Pack(x, y, plane, addr)
	if err != nil {
		return err
	}
	m.container.Set(idx, 1)
	return nil
}

// ClearBit clears addr's bit at (x, y, plane).
func (m *Map) ClearBit(x, y, plane int32, addr uint32) error {
	idx, err := m.indexer.Pack(x, y, plane, addr)
	if err != nil {
		return err
	}
	m.container.Set(idx, 0)
	return nil
}

// SetAllBits writes v's low MaxAddressIndex()+1 bits, one address at a
// time. Callers needing an atomic whole-tile write on the word-array
// backend should size bitsPerValue accordingly and call the container
// directly (see tiletype.Map).
func (m *Map) SetAllBits(x, y, plane int32, v uint8) error {
	maxAddr := m.indexer.MaxAddressIndex()
	for addr := uint32(0); addr <= maxAddr; addr++ {
		idx, err := m.indexer.Pack(x, y, plane, addr)
		if err != nil {
			return err
		}
		bit := uint64(0)
		if v&(1<<addr) != 0 {
			bit = 1
		}
		m.container.Set(idx, bit)
	}
	return nil
}
