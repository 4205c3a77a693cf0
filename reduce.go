package minicheck

import "github.com/lorenzhs/minicheck/comm"

// Pair is one (key, value) record flowing through an audited reduce.
// Manipulators mutate slices of Pair representing one internal bucket.
type Pair[K any, V any] struct {
	Key   K
	Value V
}

// ReduceAuditor verifies a distributed group-reduce-by-key without
// re-executing it. The engine feeds every raw input record to AddPre and
// every final reduced record to AddPost; Check compares the two fingerprints
// after a collective combine.
//
// Auditors are created once per operation instance, are not safe for
// concurrent use, and are reused across runs via Reset.
type ReduceAuditor[K any, V comparable] interface {
	// AddPre records one raw input record, before grouping.
	AddPre(key K, value V)

	// AddPrePair is AddPre over a Pair.
	AddPrePair(p Pair[K, V])

	// AddPost records one final reduced record.
	AddPost(key K, value V)

	// AddPostPair is AddPost over a Pair.
	AddPostPair(p Pair[K, V])

	// Reset clears both fingerprints and the memoized verdict.
	Reset()

	// Check returns whether the reduction looks correct. The first call
	// issues two collective combines (pre, then post) and must therefore be
	// made by every rank in the same order; the verdict is memoized, so
	// later calls return it without reissuing any collective.
	Check() (bool, error)
}

// NewReduceAuditor builds an auditor for op over ctx. If op carries the
// Checkable marker the active fingerprinting auditor is returned; otherwise
// the zero-cost no-op auditor, whose Check is unconditionally true. The
// no-op fallback keeps the auditor wired into the production path for every
// operation at no marginal cost.
func NewReduceAuditor[K any, V comparable](cfg Config[K], op Operation[V], ctx comm.Context) ReduceAuditor[K, V] {
	if _, ok := op.(Checkable); ok {
		return &activeReduceAuditor[K, V]{
			pre:  NewTable[K, V](cfg, op),
			post: NewTable[K, V](cfg, op),
			ctx:  ctx,
		}
	}
	return noopReduceAuditor[K, V]{}
}

// activeReduceAuditor holds pre and post fingerprint tables and memoizes the
// collective verdict.
type activeReduceAuditor[K any, V comparable] struct {
	pre     *Table[K, V]
	post    *Table[K, V]
	ctx     comm.Context
	checked bool
	result  bool
}

func (a *activeReduceAuditor[K, V]) AddPre(key K, value V) { a.pre.Push(key, value) }
func (a *activeReduceAuditor[K, V]) AddPrePair(p Pair[K, V]) { a.pre.Push(p.Key, p.Value) }
func (a *activeReduceAuditor[K, V]) AddPost(key K, value V) { a.post.Push(key, value) }
func (a *activeReduceAuditor[K, V]) AddPostPair(p Pair[K, V]) { a.post.Push(p.Key, p.Value) }

func (a *activeReduceAuditor[K, V]) Reset() {
	a.pre.Reset()
	a.post.Reset()
	a.checked = false
	a.result = false
}

func (a *activeReduceAuditor[K, V]) Check() (bool, error) {
	if a.checked {
		return a.result, nil
	}
	// Both combines are required from every rank even though only the
	// comparison outcome matters; the collective layer gives every rank the
	// same combined tables, so every rank computes the same verdict.
	if err := a.pre.AllReduce(a.ctx, "reduce/pre"); err != nil {
		return false, err
	}
	if err := a.post.AllReduce(a.ctx, "reduce/post"); err != nil {
		return false, err
	}
	eq, err := a.pre.Equal(a.post)
	if err != nil {
		return false, err
	}
	a.checked = true
	a.result = eq
	return eq, nil
}

// noopReduceAuditor is the specialization for non-checkable operations:
// every method is an O(1) no-op and Check always passes.
type noopReduceAuditor[K any, V comparable] struct{}

func (noopReduceAuditor[K, V]) AddPre(K, V) {}
func (noopReduceAuditor[K, V]) AddPrePair(Pair[K, V]) {}
func (noopReduceAuditor[K, V]) AddPost(K, V) {}
func (noopReduceAuditor[K, V]) AddPostPair(Pair[K, V]) {}
func (noopReduceAuditor[K, V]) Reset() {}
func (noopReduceAuditor[K, V]) Check() (bool, error) { return true, nil }
