package sparse

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tilegrid/mapdata/internal/mapdataerr"
)

// wire.go holds the little-endian primitive read/write helpers shared by
// BitSet.WriteTo/ReadFrom and WordArray.WriteTo/ReadFrom, per the
// tree-shaped encodings spec §4.6 documents for those two backends. The
// roaring backend delegates straight to the upstream bitmap's own
// WriteTo/ReadFrom and needs none of this.

func writeInt32(w io.Writer, v int32) (int64, error) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	n, err := w.Write(buf[:])
	return int64(n), err
}

func writeBool(w io.Writer, v bool) (int64, error) {
	var buf [1]byte
	if v {
		buf[0] = 1
	}
	n, err := w.Write(buf[:])
	return int64(n), err
}

func writeUint64(w io.Writer, v uint64) (int64, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	n, err := w.Write(buf[:])
	return int64(n), err
}

func readInt32(r io.Reader) (int32, int64, error) {
	var buf [4]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, int64(n), fmt.Errorf("%w: read int32: %v", mapdataerr.ErrCorruptData, err)
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), int64(n), nil
}

func readBool(r io.Reader) (bool, int64, error) {
	var buf [1]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return false, int64(n), fmt.Errorf("%w: read bool: %v", mapdataerr.ErrCorruptData, err)
	}
	return buf[0] != 0, int64(n), nil
}

func readUint64(r io.Reader) (uint64, int64, error) {
	var buf [8]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, int64(n), fmt.Errorf("%w: read uint64: %v", mapdataerr.ErrCorruptData, err)
	}
	return binary.LittleEndian.Uint64(buf[:]), int64(n), nil
}
