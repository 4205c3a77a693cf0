package minicheck

import (
	checkerrors "github.com/lorenzhs/minicheck/errors"
	intbits "github.com/lorenzhs/minicheck/internal/bits"
)

const (
	defaultHashBits   = 64
	defaultBucketBits = 8
	defaultRounds     = 4
)

// CheckOption is a functional option for configuring fingerprint checks.
type CheckOption func(*checkParams)

type checkParams struct {
	hashBits   uint // W: usable width of the hash function's output
	bucketBits uint // b: bits per bucket index
	rounds     uint // r: number of independent rounds
}

func defaultCheckParams() checkParams {
	return checkParams{
		hashBits:   defaultHashBits,
		bucketBits: defaultBucketBits,
		rounds:     defaultRounds,
	}
}

// WithHashBits declares the usable output width W of the hash function.
// Rounds x bucket bits must fit inside W. Hash functions producing fewer
// than 64 bits (e.g. CRC32) must declare their true width here.
func WithHashBits(w uint) CheckOption {
	return func(p *checkParams) { p.hashBits = w }
}

// WithBucketBits sets b, the number of hash bits consumed per bucket index.
// Each round has 2^b buckets.
func WithBucketBits(b uint) CheckOption {
	return func(p *checkParams) { p.bucketBits = b }
}

// WithRounds sets r, the number of independent fingerprint rounds. Each round
// consumes a disjoint b-bit slice of the hash, so a corruption that collides
// in one round is caught by another with high probability.
func WithRounds(r uint) CheckOption {
	return func(p *checkParams) { p.rounds = r }
}

// Config describes the shape of a fingerprint check over keys of type K:
// the hash function, its usable width W, bucket bits b, and round count r.
// The invariant r*b <= W is enforced at construction; two tables are
// comparable only if their configs match.
type Config[K any] struct {
	hash       func(K) uint64
	hashBits   uint
	bucketBits uint
	rounds     uint
}

// NewConfig validates and builds a check configuration.
// Defaults: W=64, b=8, r=4.
func NewConfig[K any](hash func(K) uint64, opts ...CheckOption) (Config[K], error) {
	if hash == nil {
		return Config[K]{}, checkerrors.ErrNilHash
	}
	p := defaultCheckParams()
	for _, opt := range opts {
		opt(&p)
	}
	if p.hashBits < 1 || p.hashBits > 64 {
		return Config[K]{}, checkerrors.ErrHashBitsRange
	}
	if p.bucketBits < 1 || p.bucketBits > p.hashBits {
		return Config[K]{}, checkerrors.ErrBucketBitsRange
	}
	if p.rounds < 1 {
		return Config[K]{}, checkerrors.ErrRoundsRange
	}
	if p.rounds*p.bucketBits > p.hashBits {
		return Config[K]{}, checkerrors.ErrHashWidthExceeded
	}
	return Config[K]{
		hash:       hash,
		hashBits:   p.hashBits,
		bucketBits: p.bucketBits,
		rounds:     p.rounds,
	}, nil
}

// BucketBits returns b.
func (c Config[K]) BucketBits() uint { return c.bucketBits }

// Rounds returns r.
func (c Config[K]) Rounds() uint { return c.rounds }

// HashBits returns W.
func (c Config[K]) HashBits() uint { return c.hashBits }

// numBuckets returns the bucket count per round, 2^b.
func (c Config[K]) numBuckets() int { return 1 << c.bucketBits }

// hashKey hashes key and masks the result to W bits.
func (c Config[K]) hashKey(key K) uint64 {
	return c.hash(key) & intbits.Mask(c.hashBits)
}

// bucketOf extracts round's b-bit bucket index from a masked hash.
func (c Config[K]) bucketOf(h uint64, round uint) int {
	return int(intbits.Extract(h, round*c.bucketBits, c.bucketBits))
}

// sameShape reports whether two configs produce comparable tables.
// The hash functions themselves cannot be compared; callers are responsible
// for constructing compared tables from the same Config value.
func (c Config[K]) sameShape(o Config[K]) bool {
	return c.hashBits == o.hashBits && c.bucketBits == o.bucketBits && c.rounds == o.rounds
}
