// Package coord packs (x, y, plane, addr) world-tile coordinates into the
// 31/32-bit indices the sparse containers store. It implements the two
// schemes spec'd for a fixed-size 3D tile grid: a flag-interleaved layout
// that keeps different addresses far apart in index space, and a
// cache-contiguous layout that keeps a tile's addresses adjacent.
package coord

// World identifies a single tile: (X, Y) in world-tile units and Plane
// as the vertical layer (0..3 for the standard preset). It carries no
// behavior of its own — all packing logic lives in Indexer, per the
// closed-sum-type design this package follows.
type World struct {
	X     int32
	Y     int32
	Plane int32
}
