package sparse

import (
	"io"

	"github.com/RoaringBitmap/roaring"
)

// Roaring wraps a github.com/RoaringBitmap/roaring.Bitmap directly rather
// than reimplementing the compressed-bitmap format, so the on-disk bytes
// stay byte-identical to the upstream Roaring spec (spec §4.2.1: "must
// interoperate at the bit level with the open Roaring specification").
// It stores one bit per index; Set treats a value whose low bit is 1 as
// "add" and any other value as "remove".
type Roaring struct {
	bm *roaring.Bitmap
}

// NewRoaring creates an empty roaring-backed container.
func NewRoaring() *Roaring {
	return &Roaring{bm: roaring.New()}
}

func (r *Roaring) Capacity() int { return 32 }

// Get returns 1 if i is set, 0 otherwise.
func (r *Roaring) Get(i uint32) uint64 {
	if r.bm.Contains(i) {
		return 1
	}
	return 0
}

// Contains is a boolean-returning alias for Get, matching the bitset
// backend's vocabulary.
func (r *Roaring) Contains(i uint32) bool {
	return r.bm.Contains(i)
}

// Set adds i to the bitmap when v's low bit is 1, removes it otherwise.
func (r *Roaring) Set(i uint32, v uint64) {
	if v&1 != 0 {
		r.bm.Add(i)
	} else {
		r.bm.Remove(i)
	}
}

// Add is a direct alias for Set(i, 1), matching the upstream bitmap's own
// vocabulary.
func (r *Roaring) Add(i uint32) {
	r.bm.Add(i)
}

// RunOptimize collapses dense runs into run-length containers. The codec
// calls this immediately before serialization, per spec §4.6.
func (r *Roaring) RunOptimize() {
	r.bm.RunOptimize()
}

// Cardinality returns the number of set bits.
func (r *Roaring) Cardinality() uint64 {
	return r.bm.GetCardinality()
}

// WriteTo serializes the bitmap in the upstream Roaring wire format.
func (r *Roaring) WriteTo(w io.Writer) (int64, error) {
	return r.bm.WriteTo(w)
}

// ReadFrom replaces the bitmap's contents by deserializing from the
// upstream Roaring wire format.
func (r *Roaring) ReadFrom(rd io.Reader) (int64, error) {
	r.bm = roaring.New()
	return r.bm.ReadFrom(rd)
}

// Underlying exposes the wrapped bitmap for callers (e.g. a collision-map
// comparison test) that want upstream-specific operations like And/Or.
func (r *Roaring) Underlying() *roaring.Bitmap {
	return r.bm
}
