// Package codec implements the persistence layer (spec C6): format and
// gzip auto-detection from a file name, the three documented wire
// formats, an xxhash integrity footer, and atomic save-by-rename.
package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/tilegrid/mapdata/internal/mapdataerr"
	"github.com/tilegrid/mapdata/internal/metrics"
	"github.com/tilegrid/mapdata/internal/sparse"
)

// Format selects which of the three wire layouts a container is
// serialized with. The zero value is FormatRoaring, spec §6's default.
type Format int

const (
	FormatRoaring Format = iota
	FormatBitSet
	FormatWordArray
)

// String returns the filename substring spec §6 associates with f.
func (f Format) String() string {
	switch f {
	case FormatBitSet:
		return "sparse"
	case FormatWordArray:
		return "wordset"
	default:
		return "roaring"
	}
}

// DetectFormat inspects path's filename for one of "roaring", "sparse"
// or "wordset" (spec §6); an unrecognized or absent substring defaults
// to roaring.
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "wordset"):
		return FormatWordArray
	case strings.Contains(name, "sparse"):
		return FormatBitSet
	default:
		return FormatRoaring
	}
}

// DetectGzip reports whether path's filename ends in ".gz".
func DetectGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

const footerSize = 8

// Writer serializes one sparse.Container to disk in a chosen format.
// Format must match Container's concrete backend type: FormatRoaring
// requires *sparse.Roaring, FormatBitSet requires *sparse.BitSet,
// FormatWordArray requires *sparse.WordArray.
type Writer struct {
	Format    Format
	Container sparse.Container

	// Metrics is optional; when set, Save records payload byte counts
	// and (for FormatRoaring) run-optimize timing on it.
	Metrics *metrics.Registry
}

// NewWriter builds a Writer for container in the given format.
func NewWriter(format Format, container sparse.Container) *Writer {
	return &Writer{Format: format, Container: container}
}

// Save serializes the container (run-optimizing first for roaring, per
// spec §4.6), appends an 8-byte little-endian xxhash footer over the
// payload, gzips the whole thing if path ends in ".gz", and writes the
// result to path atomically: the bytes land in a sibling
// "<path>.<uuid>.tmp" file first, which is renamed onto path only once
// fully flushed and closed.
func (w *Writer) Save(path string) error {
	payload, err := w.serializePayload()
	if err != nil {
		return err
	}
	if w.Metrics != nil {
		w.Metrics.CodecBytesOut.Add(float64(len(payload)))
	}

	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint64(footer, xxhash.Sum64(payload))

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := writeFileAtomic(tmpPath, path, payload, footer, DetectGzip(path)); err != nil {
		return errors.Wrap(err, "codec: save "+path)
	}
	return nil
}

func (w *Writer) serializePayload() ([]byte, error) {
	var buf bytes.Buffer

	switch w.Format {
	case FormatRoaring:
		r, ok := w.Container.(*sparse.Roaring)
		if !ok {
			return nil, fmt.Errorf("%w: roaring format requires *sparse.Roaring, got %T", mapdataerr.ErrInvalidConfiguration, w.Container)
		}
		if w.Metrics != nil {
			start := time.Now()
			r.RunOptimize()
			w.Metrics.RoaringRunOptimizeSeconds.Observe(time.Since(start).Seconds())
		} else {
			r.RunOptimize()
		}
		if _, err := r.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("%w: serialize roaring bitmap: %v", mapdataerr.ErrIOError, err)
		}

	case FormatBitSet:
		b, ok := w.Container.(*sparse.BitSet)
		if !ok {
			return nil, fmt.Errorf("%w: sparse format requires *sparse.BitSet, got %T", mapdataerr.ErrInvalidConfiguration, w.Container)
		}
		if _, err := b.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("%w: serialize bitset: %v", mapdataerr.ErrIOError, err)
		}

	case FormatWordArray:
		wa, ok := w.Container.(*sparse.WordArray)
		if !ok {
			return nil, fmt.Errorf("%w: wordset format requires *sparse.WordArray, got %T", mapdataerr.ErrInvalidConfiguration, w.Container)
		}
		if _, err := wa.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("%w: serialize wordset: %v", mapdataerr.ErrIOError, err)
		}

	default:
		return nil, fmt.Errorf("%w: unknown format %d", mapdataerr.ErrInvalidConfiguration, w.Format)
	}

	return buf.Bytes(), nil
}

func writeFileAtomic(tmpPath, finalPath string, payload, footer []byte, gz bool) error {
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", mapdataerr.ErrIOError, err)
	}

	if err := writeCompressed(f, payload, footer, gz); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close temp file: %v", mapdataerr.ErrIOError, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place: %v", mapdataerr.ErrIOError, err)
	}
	return nil
}

func writeCompressed(f *os.File, payload, footer []byte, gz bool) error {
	var out io.Writer = f
	var gzw *gzip.Writer
	if gz {
		gzw = gzip.NewWriter(f)
		out = gzw
	}

	bw := bufio.NewWriter(out)
	if _, err := bw.Write(payload); err != nil {
		return fmt.Errorf("%w: write payload: %v", mapdataerr.ErrIOError, err)
	}
	if _, err := bw.Write(footer); err != nil {
		return fmt.Errorf("%w: write footer: %v", mapdataerr.ErrIOError, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", mapdataerr.ErrIOError, err)
	}
	if gzw != nil {
		if err := gzw.Close(); err != nil {
			return fmt.Errorf("%w: close gzip stream: %v", mapdataerr.ErrIOError, err)
		}
	}
	return nil
}

// Load opens path, detects format and gzip from its filename, verifies
// the integrity footer, and returns the deserialized sparse.Container
// along with the format that was used. reg is optional; when non-nil,
// the post-decompression byte count (payload plus its 8-byte footer) is
// recorded on it.
func Load(path string, reg *metrics.Registry) (sparse.Container, Format, error) {
	format := DetectFormat(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, format, fmt.Errorf("%w: read %s: %v", mapdataerr.ErrIOError, path, err)
	}

	var reader io.Reader = bytes.NewReader(raw)
	if DetectGzip(path) {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, format, fmt.Errorf("%w: open gzip stream for %s: %v", mapdataerr.ErrCorruptData, path, err)
		}
		defer gzr.Close()
		reader = gzr
	}

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, format, fmt.Errorf("%w: decompress %s: %v", mapdataerr.ErrIOError, path, err)
	}
	if reg != nil {
		reg.CodecBytesIn.Add(float64(len(decompressed)))
	}

	container, err := decode(format, decompressed)
	if err != nil {
		return nil, format, errors.Wrapf(err, "codec: load %s", path)
	}
	return container, format, nil
}

func decode(format Format, data []byte) (sparse.Container, error) {
	if len(data) < footerSize {
		return nil, fmt.Errorf("%w: file shorter than footer (%d bytes)", mapdataerr.ErrCorruptData, len(data))
	}

	payload := data[:len(data)-footerSize]
	wantSum := binary.LittleEndian.Uint64(data[len(data)-footerSize:])
	if gotSum := xxhash.Sum64(payload); gotSum != wantSum {
		return nil, fmt.Errorf("%w: xxhash footer mismatch (want %x, got %x)", mapdataerr.ErrCorruptData, wantSum, gotSum)
	}

	r := bytes.NewReader(payload)

	switch format {
	case FormatRoaring:
		bm := sparse.NewRoaring()
		if _, err := bm.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("%w: decode roaring bitmap: %v", mapdataerr.ErrCorruptData, err)
		}
		return bm, nil

	case FormatBitSet:
		b := sparse.NewBitSet()
		if _, err := b.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("%w: decode sparse bitset: %v", mapdataerr.ErrCorruptData, err)
		}
		return b, nil

	case FormatWordArray:
		wa, _, err := sparse.ReadWordArray(r)
		if err != nil {
			return nil, fmt.Errorf("%w: decode sparse wordset: %v", mapdataerr.ErrCorruptData, err)
		}
		return wa, nil

	default:
		return nil, fmt.Errorf("%w: unknown format %d", mapdataerr.ErrInvalidConfiguration, format)
	}
}
