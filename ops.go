package minicheck

import "golang.org/x/exp/constraints"

// Operation is a reduction function with an identity element. The same
// operation instance drives both the audited reduce and the fingerprint
// buckets; it must be stateless (see the package documentation).
type Operation[V any] interface {
	// Combine folds two values into one.
	Combine(a, b V) V

	// Identity returns the operation's identity element, used to clear
	// fingerprint buckets.
	Identity() V
}

// Checkable marks an Operation as commutative and associative, making it
// eligible for fingerprint-based auditing. NewReduceAuditor degrades to the
// always-pass no-op auditor for operations without this marker; that is
// documented policy, not an error.
type Checkable interface {
	CommutativeAssociative()
}

// Number constrains the built-in arithmetic operations.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sum adds values. Checkable; identity 0.
type Sum[V Number] struct{}

func (Sum[V]) Combine(a, b V) V       { return a + b }
func (Sum[V]) Identity() V            { var z V; return z }
func (Sum[V]) CommutativeAssociative() {}

// Prod multiplies values. Checkable; identity 1.
type Prod[V Number] struct{}

func (Prod[V]) Combine(a, b V) V       { return a * b }
func (Prod[V]) Identity() V            { return 1 }
func (Prod[V]) CommutativeAssociative() {}

// Xor combines values bitwise. Checkable; identity 0.
type Xor[V constraints.Integer] struct{}

func (Xor[V]) Combine(a, b V) V       { return a ^ b }
func (Xor[V]) Identity() V            { var z V; return z }
func (Xor[V]) CommutativeAssociative() {}

// Min takes the smaller value. Checkable. Go cannot express "maximum value
// of V" generically, so the identity is supplied at construction; use the
// type's maximum (e.g. math.MaxUint32) so it never wins a Combine.
type Min[V constraints.Ordered] struct {
	Ident V
}

func (m Min[V]) Combine(a, b V) V {
	if b < a {
		return b
	}
	return a
}
func (m Min[V]) Identity() V            { return m.Ident }
func (Min[V]) CommutativeAssociative() {}

// Max takes the larger value. Checkable. As with Min, the identity is
// supplied at construction; use the type's minimum.
type Max[V constraints.Ordered] struct {
	Ident V
}

func (m Max[V]) Combine(a, b V) V {
	if b > a {
		return b
	}
	return a
}
func (m Max[V]) Identity() V            { return m.Ident }
func (Max[V]) CommutativeAssociative() {}

// TakeFirst keeps the first value it sees. Not commutative, therefore not
// Checkable: auditors built on it are the no-op variant. It exists for
// pipelines whose reduction is order-dependent.
type TakeFirst[V any] struct{}

func (TakeFirst[V]) Combine(a, _ V) V { return a }
func (TakeFirst[V]) Identity() V      { var z V; return z }
