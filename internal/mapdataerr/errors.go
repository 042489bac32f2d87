// Package mapdataerr defines the typed error kinds shared by every layer
// of the tile data store: indexers, sparse containers, the persistence
// codec, and the batch processors.
//
// Callers should compare against these sentinels with errors.Is; wrapped
// context is added with fmt.Errorf("...: %w", ErrX) or, where a stack
// trace helps diagnose a batch-job failure after the fact, with
// github.com/pkg/errors.Wrap.
package mapdataerr

import "errors"

var (
	// ErrInvalidConfiguration means an indexer (or other component) was
	// constructed with parameters that can never produce a valid index,
	// e.g. the coordinate bits overflow the addressable capacity.
	ErrInvalidConfiguration = errors.New("mapdata: invalid configuration")

	// ErrInvalidCoordinate means a coordinate fell outside the indexer's
	// validated range.
	ErrInvalidCoordinate = errors.New("mapdata: invalid coordinate")

	// ErrInvalidValue means a word array was requested with a
	// bits_per_value that is not one of {1,2,4,8,16,32,64}. Values wider
	// than a container's width are masked on Set, not rejected.
	ErrInvalidValue = errors.New("mapdata: invalid value")

	// ErrFormatMismatch means the on-disk bits_per_value (or other
	// format parameter) differs from the one the reader was constructed
	// with.
	ErrFormatMismatch = errors.New("mapdata: format mismatch")

	// ErrCorruptData means a deserializer could not parse its input:
	// truncated stream, bad length prefix, or a failed integrity check.
	ErrCorruptData = errors.New("mapdata: corrupt data")

	// ErrIOError wraps filesystem or gzip stream failures.
	ErrIOError = errors.New("mapdata: io error")

	// ErrCancellationRequested means a batch operation observed its
	// context cancelled at a worker-join boundary and abandoned its
	// partial work.
	ErrCancellationRequested = errors.New("mapdata: cancellation requested")
)
