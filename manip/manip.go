// Package manip is a library of deliberate data-corruption strategies used to
// stress-test the minicheck auditors. A manipulator is invoked by the audited
// engine against exactly one bounded unit of in-flight data: one reduce
// bucket (a slice of key-value pairs) or one sort block (a slice of values).
//
// Every strategy owns an explicitly seeded PRNG, so experiments are
// reproducible under a fixed seed and concurrent experiments never share
// mutable RNG state. A manipulator's lifecycle is one experimental run.
//
// Most strategies corrupt at most once per lifecycle: constructors return
// them wrapped in the OnlyOnce gate. The two-phase move-last-to-next-block
// strategy opts out, because its single logical corruption spans two
// invocations.
package manip

import "math/rand/v2"

// Manipulator corrupts one unit of data of type T (a reduce bucket or a sort
// block). Manipulate may mutate in place, shrink, or grow; callers must keep
// the returned slice. MadeChanges reports whether any invocation so far
// actually corrupted data.
type Manipulator[T any] interface {
	Manipulate(in T) T
	MadeChanges() bool
}

// base provides the made-changes flag embedded by every concrete strategy.
type base struct {
	changed bool
}

func (b *base) MadeChanges() bool { return b.changed }

// newRNG builds a strategy-owned PRNG from a single seed value.
func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// onlyOnce gates a strategy so that after its first effective corruption all
// later invocations return the input unchanged.
type onlyOnce[T any] struct {
	inner Manipulator[T]
}

// OnlyOnce wraps m so it corrupts at most once per lifecycle. Constructors in
// this package already apply it where appropriate; exported for composing
// custom strategies.
func OnlyOnce[T any](m Manipulator[T]) Manipulator[T] {
	return &onlyOnce[T]{inner: m}
}

func (o *onlyOnce[T]) Manipulate(in T) T {
	if o.inner.MadeChanges() {
		return in
	}
	return o.inner.Manipulate(in)
}

func (o *onlyOnce[T]) MadeChanges() bool { return o.inner.MadeChanges() }

// Dummy never corrupts anything. It closes the experimental control loop:
// with it, a Driver run succeeds iff the auditor passes.
type Dummy[T any] struct{}

func (Dummy[T]) Manipulate(in T) T { return in }
func (Dummy[T]) MadeChanges() bool { return false }

// Stack runs several manipulators against the same input, relying on
// in-place mutation; stage outputs are not threaded (use StackPass for
// that). MadeChanges is the logical OR across stages.
type Stack[T any] struct {
	stages []Manipulator[T]
}

// NewStack builds a Stack over the given stages.
func NewStack[T any](stages ...Manipulator[T]) *Stack[T] {
	return &Stack[T]{stages: stages}
}

func (s *Stack[T]) Manipulate(in T) T {
	for _, st := range s.stages {
		st.Manipulate(in)
	}
	return in
}

func (s *Stack[T]) MadeChanges() bool {
	for _, st := range s.stages {
		if st.MadeChanges() {
			return true
		}
	}
	return false
}

// StackPass threads each stage's output into the next stage, so stages may
// shrink or grow the unit. MadeChanges is the logical OR across stages.
type StackPass[T any] struct {
	stages []Manipulator[T]
}

// NewStackPass builds a StackPass over the given stages.
func NewStackPass[T any](stages ...Manipulator[T]) *StackPass[T] {
	return &StackPass[T]{stages: stages}
}

func (s *StackPass[T]) Manipulate(in T) T {
	out := in
	for _, st := range s.stages {
		out = st.Manipulate(out)
	}
	return out
}

func (s *StackPass[T]) MadeChanges() bool {
	for _, st := range s.stages {
		if st.MadeChanges() {
			return true
		}
	}
	return false
}
