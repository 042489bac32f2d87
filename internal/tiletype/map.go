// Package tiletype implements the 8-bit tile-category map (spec C5):
// 0 = none, 1..12 = water variants, any value > 0 is "water" for the
// boat-fit processor.
package tiletype

import (
	"github.com/tilegrid/mapdata/internal/coord"
	"github.com/tilegrid/mapdata/internal/sparse"
)

// MaxWaterVariant is the highest known water tile-type value (spec §3).
const MaxWaterVariant = 12

// Map is the tile-type facade over a single-address sparse container:
// one u8 value per (x, y, plane), no per-tile sub-addressing.
type Map struct {
	container sparse.Container
	indexer   *coord.Indexer
}

// New wraps container (addressed by indexer, addressesPerCoord=1) as a
// tile-type map. sparse.WordArray(bitsPerValue=8) is the default backend
// per spec §4.2's rationale (a single word read per tile beats 8 roaring
// membership tests); sparse.Roaring per-bit-plane remains an option for
// callers optimizing for size over read latency.
func New(container sparse.Container, indexer *coord.Indexer) *Map {
	return &Map{container: container, indexer: indexer}
}

// Container returns the underlying sparse container, for the codec.
func (m *Map) Container() sparse.Container { return m.container }

// Indexer returns the indexer this map was constructed with.
func (m *Map) Indexer() *coord.Indexer { return m.indexer }

// GetTileType returns the tile category at (x, y, plane), or 0 if unset.
func (m *Map) GetTileType(x, y, plane int32) (uint8, error) {
	idx, err := m.indexer.Pack(x, y, plane, 0)
	if err != nil {
		return 0, err
	}
	return uint8(m.container.Get(idx)), nil
}

// IsWater reports whether the tile's category is a water variant
// (tile_type > 0, per spec §3).
func (m *Map) IsWater(x, y, plane int32) (bool, error) {
	t, err := m.GetTileType(x, y, plane)
	if err != nil {
		return false, err
	}
	return t > 0, nil
}

// SetTileType writes the tile category at (x, y, plane).
func (m *Map) SetTileType(x, y, plane int32, t uint8) error {
	idx, err := m.indexer.Pack(x, y, plane, 0)
	if err != nil {
		return err
	}
	m.container.Set(idx, uint64(t))
	return nil
}
