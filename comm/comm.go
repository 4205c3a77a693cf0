// Package comm provides the collective-communication abstraction the auditors
// run on: rank identity, element-wise AllReduce, and ranked predecessor
// exchange.
//
// The real distributed engines supply their own Context implementation backed
// by their network layer. This package additionally ships an in-process
// implementation (NewLocal, RunLocal) that runs every rank as a goroutine in
// one process, which is what the test harness and the bench tool use.
//
// # Collective discipline
//
// Every collective blocks the calling rank until all ranks have issued the
// matching call. Ranks must issue collectives in the same relative order with
// the same operation tag and payload width; a detected mismatch fails the
// collective on every rank with ErrCollectiveMismatch. An undetectable
// mismatch (a rank that never calls at all) deadlocks, matching the fail-stop
// assumption of the underlying collective layer.
package comm

// Context is one rank's handle on the collective layer.
//
// Implementations are not required to be safe for concurrent use by multiple
// goroutines; each rank's context is driven by the single goroutine owning
// that rank.
type Context interface {
	// Rank returns this rank's index in [0, NumRanks).
	Rank() int

	// NumRanks returns the number of participating ranks.
	NumRanks() int

	// AllReduceAny combines each rank's contribution element-wise using
	// combine and returns the combined slice to every rank. The op tag and
	// len(in) must agree across ranks. combine must be equivalent on every
	// rank; which rank's closure performs the fold is unspecified.
	AllReduceAny(op string, in []any, combine func(a, b any) any) ([]any, error)

	// PredecessorAny sends items to rank+1 and returns the items received
	// from rank-1. Rank 0 receives nil; the last rank's send is discarded.
	PredecessorAny(op string, send []any) ([]any, error)
}

// AllReduce is the typed wrapper over Context.AllReduceAny.
func AllReduce[T any](c Context, op string, in []T, combine func(T, T) T) ([]T, error) {
	boxed := make([]any, len(in))
	for i, v := range in {
		boxed[i] = v
	}
	out, err := c.AllReduceAny(op, boxed, func(a, b any) any {
		return combine(a.(T), b.(T))
	})
	if err != nil {
		return nil, err
	}
	res := make([]T, len(out))
	for i, v := range out {
		res[i] = v.(T)
	}
	return res, nil
}

// Predecessor is the typed wrapper over Context.PredecessorAny.
// Rank 0 receives a nil slice.
func Predecessor[T any](c Context, op string, send []T) ([]T, error) {
	boxed := make([]any, len(send))
	for i, v := range send {
		boxed[i] = v
	}
	out, err := c.PredecessorAny(op, boxed)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	res := make([]T, len(out))
	for i, v := range out {
		res[i] = v.(T)
	}
	return res, nil
}
