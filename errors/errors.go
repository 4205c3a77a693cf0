// Package errors defines all exported error sentinels for the minicheck library.
//
// This is the single source of truth for error values. Both the top-level
// minicheck package and the comm package import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Configuration errors. These are programming errors reported at construction
// time, never surfaced as a statistical check outcome.
var (
	ErrNilHash           = errors.New("minicheck: hash function must not be nil")
	ErrHashBitsRange     = errors.New("minicheck: hash width must be in [1, 64]")
	ErrBucketBitsRange   = errors.New("minicheck: bucket bits must be in [1, hash width]")
	ErrRoundsRange       = errors.New("minicheck: number of rounds must be at least 1")
	ErrHashWidthExceeded = errors.New("minicheck: rounds x bucket bits exceeds hash width")
	ErrShapeMismatch     = errors.New("minicheck: fingerprint tables have mismatched configurations")
	ErrNilCompare        = errors.New("minicheck: compare function must not be nil")
	ErrNilCollective     = errors.New("minicheck: collective context must not be nil")
)

// Collective-communication errors.
var (
	ErrRankCount          = errors.New("minicheck: number of ranks must be at least 1")
	ErrCollectiveMismatch = errors.New("minicheck: ranks issued mismatched collective operations")
)
