package minicheck

import (
	"github.com/lorenzhs/minicheck/comm"
	checkerrors "github.com/lorenzhs/minicheck/errors"
	intbits "github.com/lorenzhs/minicheck/internal/bits"
)

// SortOption is a functional option for configuring a SortAuditor.
type SortOption func(*sortParams)

type sortParams struct {
	hashBits   uint
	sortedness bool
}

// WithSortHashBits sets the checksum width: element hashes are summed
// mod 2^w. Default 64.
func WithSortHashBits(w uint) SortOption {
	return func(p *sortParams) { p.hashBits = w }
}

// WithSortednessCheck toggles the global-order sub-check inside Check.
// When disabled, Check verifies only that the output is a permutation of the
// input. Default enabled.
func WithSortednessCheck(enabled bool) SortOption {
	return func(p *sortParams) { p.sortedness = enabled }
}

// boundary carries one rank's trailing element to its successor. valid is
// false for ranks that emitted no output.
type boundary[V any] struct {
	valid bool
	value V
}

// SortAuditor verifies a distributed sort: a permutation fingerprint
// (element count plus masked hash sum, pre and post) and local plus
// cross-rank order tracking. The engine feeds every input element to AddPre
// and every output element, in emission order, to AddPost.
//
// The permutation check has one-sided error: a correct output is never
// rejected, and an incorrect one is wrongly accepted only if both the counts
// and the masked checksums collide.
//
// Not safe for concurrent use; all methods are called from the goroutine
// owning the rank.
type SortAuditor[V comparable] struct {
	cmp  func(a, b V) int
	hash func(V) uint64
	mask uint64
	ctx  comm.Context

	countPre, countPost uint64
	sumPre, sumPost     uint64
	firstPost, lastPost V
	havePost            bool
	sorted              bool
	sortedness          bool
}

// NewSortAuditor builds a sort auditor over ctx. cmp follows the cmp.Compare
// convention (negative, zero, positive); hash maps elements to checksummed
// words.
func NewSortAuditor[V comparable](ctx comm.Context, cmp func(a, b V) int, hash func(V) uint64, opts ...SortOption) (*SortAuditor[V], error) {
	if ctx == nil {
		return nil, checkerrors.ErrNilCollective
	}
	if cmp == nil {
		return nil, checkerrors.ErrNilCompare
	}
	if hash == nil {
		return nil, checkerrors.ErrNilHash
	}
	p := sortParams{hashBits: 64, sortedness: true}
	for _, opt := range opts {
		opt(&p)
	}
	if p.hashBits < 1 || p.hashBits > 64 {
		return nil, checkerrors.ErrHashBitsRange
	}
	return &SortAuditor[V]{
		cmp:        cmp,
		hash:       hash,
		mask:       intbits.Mask(p.hashBits),
		ctx:        ctx,
		sorted:     true,
		sortedness: p.sortedness,
	}, nil
}

// AddPre records one input element.
func (s *SortAuditor[V]) AddPre(value V) {
	s.countPre++
	s.sumPre = (s.sumPre + s.hash(value)) & s.mask
}

// AddPost records one output element in emission order, tracking local
// inversions and the rank's first and last elements for the cross-rank
// boundary check.
func (s *SortAuditor[V]) AddPost(value V) {
	if !s.havePost {
		s.firstPost = value
		s.havePost = true
	} else if s.cmp(value, s.lastPost) < 0 {
		s.sorted = false
	}
	s.lastPost = value
	s.countPost++
	s.sumPost = (s.sumPost + s.hash(value)) & s.mask
}

// Reset clears all accumulated state for run reuse.
func (s *SortAuditor[V]) Reset() {
	var zero V
	s.countPre, s.countPost = 0, 0
	s.sumPre, s.sumPost = 0, 0
	s.firstPost, s.lastPost = zero, zero
	s.havePost = false
	s.sorted = true
}

// IsSorted verifies global order: each rank sends its last element to its
// successor, which checks it against its own first element; a summed
// AllReduce of the per-rank "unsorted" indicators yields the verdict on
// every rank. Collective: every rank must call in lock-step.
//
// An empty rank neither sends a comparable boundary nor fails the check, so
// the pair of ranks around it are not compared against each other.
func (s *SortAuditor[V]) IsSorted() (bool, error) {
	send := []boundary[V]{{valid: s.havePost, value: s.lastPost}}
	recv, err := comm.Predecessor(s.ctx, "sort/boundary", send)
	if err != nil {
		return false, err
	}
	sorted := s.sorted
	if len(recv) == 1 && recv[0].valid && s.havePost && s.cmp(recv[0].value, s.firstPost) > 0 {
		sorted = false
	}
	var unsorted uint64
	if !sorted {
		unsorted = 1
	}
	total, err := comm.AllReduce(s.ctx, "sort/unsorted", []uint64{unsorted},
		func(a, b uint64) uint64 { return a + b })
	if err != nil {
		return false, err
	}
	return total[0] == 0, nil
}

// IsLikelyPermutation verifies that the global output multiset equals the
// global input multiset up to hash collisions: an AllReduce sums the
// (countPre, countPost, sumPre, sumPost) tuple component-wise and every rank
// compares totals. Equal multisets always pass; unequal counts or checksums
// always fail. Collective: every rank must call in lock-step.
func (s *SortAuditor[V]) IsLikelyPermutation() (bool, error) {
	local := []uint64{s.countPre, s.countPost, s.sumPre, s.sumPost}
	total, err := comm.AllReduce(s.ctx, "sort/permutation", local,
		func(a, b uint64) uint64 { return a + b })
	if err != nil {
		return false, err
	}
	countsMatch := total[0] == total[1]
	sumsMatch := total[2]&s.mask == total[3]&s.mask
	return countsMatch && sumsMatch, nil
}

// Check runs the permutation check and, unless disabled via
// WithSortednessCheck(false), the global-order check. Both collectives are
// issued unconditionally so every rank performs the same sequence.
func (s *SortAuditor[V]) Check() (bool, error) {
	sorted := true
	if s.sortedness {
		var err error
		sorted, err = s.IsSorted()
		if err != nil {
			return false, err
		}
	}
	perm, err := s.IsLikelyPermutation()
	if err != nil {
		return false, err
	}
	return sorted && perm, nil
}
