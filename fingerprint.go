package minicheck

import (
	"github.com/lorenzhs/minicheck/comm"
	checkerrors "github.com/lorenzhs/minicheck/errors"
)

// Table is a fixed-size probabilistic fingerprint of a keyed multiset
// ("mini-reduction"): r independent rounds of 2^b buckets, each bucket
// folding its values with the audited operation. Two tables built over
// disjoint partitions of an input combine (bucket-wise, with the same
// operation) into the table of the union, because the operation is
// commutative and associative. That identity is exact: randomness only
// bounds the probability that an incorrect result collides with a correct
// fingerprint.
//
// A Table is built only through Push and Reset, is exclusively owned by its
// auditor, and is not safe for concurrent use.
type Table[K any, V comparable] struct {
	cfg     Config[K]
	op      Operation[V]
	buckets []V // rounds x numBuckets, flat, round-major
}

// NewTable creates a fingerprint table with every bucket set to the
// operation's identity.
func NewTable[K any, V comparable](cfg Config[K], op Operation[V]) *Table[K, V] {
	t := &Table[K, V]{
		cfg:     cfg,
		op:      op,
		buckets: make([]V, int(cfg.rounds)*cfg.numBuckets()),
	}
	t.Reset()
	return t
}

// Push folds value into one bucket per round. Round idx consumes bits
// [idx*b, (idx+1)*b) of the masked key hash as its bucket index.
func (t *Table[K, V]) Push(key K, value V) {
	h := t.cfg.hashKey(key)
	nb := t.cfg.numBuckets()
	for r := uint(0); r < t.cfg.rounds; r++ {
		i := int(r)*nb + t.cfg.bucketOf(h, r)
		t.buckets[i] = t.op.Combine(t.buckets[i], value)
	}
}

// Reset sets every bucket back to the operation's identity.
func (t *Table[K, V]) Reset() {
	id := t.op.Identity()
	for i := range t.buckets {
		t.buckets[i] = id
	}
}

// AllReduce replaces the table's buckets with the element-wise collective
// combine of all ranks' buckets. Every rank must call this exactly once per
// logical check, in the same order as its peers.
func (t *Table[K, V]) AllReduce(c comm.Context, op string) error {
	combined, err := comm.AllReduce(c, op, t.buckets, t.op.Combine)
	if err != nil {
		return err
	}
	t.buckets = combined
	return nil
}

// Equal reports whether both tables hold identical buckets. A shape mismatch
// between the configurations is a programming error, never a statistical
// outcome, and is returned as ErrShapeMismatch.
func (t *Table[K, V]) Equal(o *Table[K, V]) (bool, error) {
	if !t.cfg.sameShape(o.cfg) {
		return false, checkerrors.ErrShapeMismatch
	}
	for i := range t.buckets {
		if t.buckets[i] != o.buckets[i] {
			return false, nil
		}
	}
	return true, nil
}
