package manip

import (
	"math/rand/v2"

	"golang.org/x/exp/constraints"

	"github.com/lorenzhs/minicheck"
)

// Reduce-side strategies operate on one internal bucket: a slice of
// key-value pairs that may contain sentinel ("empty key") slots, which every
// strategy skips before selecting a victim. A strategy that finds no real
// element leaves the bucket alone and does not set its made-changes flag.

// Bucket is one reduce bucket as handed to a manipulator.
type Bucket[K comparable, V any] = []minicheck.Pair[K, V]

// firstReal returns the index of the first non-sentinel element, or -1.
func firstReal[K comparable, V any](bucket Bucket[K, V], emptyKey K) int {
	for i := range bucket {
		if bucket[i].Key != emptyKey {
			return i
		}
	}
	return -1
}

// dropFirst removes the first real element of the bucket.
type dropFirst[K comparable, V any] struct {
	base
	emptyKey K
}

// NewDropFirst drops the first real element of the bucket, once.
func NewDropFirst[K comparable, V any](emptyKey K) Manipulator[Bucket[K, V]] {
	return OnlyOnce[Bucket[K, V]](&dropFirst[K, V]{emptyKey: emptyKey})
}

func (m *dropFirst[K, V]) Manipulate(bucket Bucket[K, V]) Bucket[K, V] {
	i := firstReal(bucket, m.emptyKey)
	if i < 0 {
		return bucket
	}
	m.changed = true
	return append(bucket[:i], bucket[i+1:]...)
}

// incFirstValue increments the value of the first real element.
type incFirstValue[K comparable, V constraints.Integer] struct {
	base
	emptyKey K
}

// NewIncrementFirstValue increments the first real element's value, once.
func NewIncrementFirstValue[K comparable, V constraints.Integer](emptyKey K) Manipulator[Bucket[K, V]] {
	return OnlyOnce[Bucket[K, V]](&incFirstValue[K, V]{emptyKey: emptyKey})
}

func (m *incFirstValue[K, V]) Manipulate(bucket Bucket[K, V]) Bucket[K, V] {
	i := firstReal(bucket, m.emptyKey)
	if i < 0 {
		return bucket
	}
	bucket[i].Value++
	m.changed = true
	return bucket
}

// incFirstKey increments the key of the first real element, rerouting it to
// a different reduce slot.
type incFirstKey[K constraints.Integer, V any] struct {
	base
	emptyKey K
}

// NewIncrementFirstKey increments the first real element's key, once.
// The incremented key is bumped again if it lands on the sentinel.
func NewIncrementFirstKey[K constraints.Integer, V any](emptyKey K) Manipulator[Bucket[K, V]] {
	return OnlyOnce[Bucket[K, V]](&incFirstKey[K, V]{emptyKey: emptyKey})
}

func (m *incFirstKey[K, V]) Manipulate(bucket Bucket[K, V]) Bucket[K, V] {
	i := firstReal(bucket, m.emptyKey)
	if i < 0 {
		return bucket
	}
	bucket[i].Key++
	if bucket[i].Key == m.emptyKey {
		bucket[i].Key++
	}
	m.changed = true
	return bucket
}

// randFirstValue replaces the first real element's value with a random one.
type randFirstValue[K comparable, V constraints.Integer] struct {
	base
	emptyKey K
	rng      *rand.Rand
}

// NewRandomizeFirstValue replaces the first real element's value with a
// random value guaranteed to differ, once.
func NewRandomizeFirstValue[K comparable, V constraints.Integer](emptyKey K, seed uint64) Manipulator[Bucket[K, V]] {
	return OnlyOnce[Bucket[K, V]](&randFirstValue[K, V]{emptyKey: emptyKey, rng: newRNG(seed)})
}

func (m *randFirstValue[K, V]) Manipulate(bucket Bucket[K, V]) Bucket[K, V] {
	i := firstReal(bucket, m.emptyKey)
	if i < 0 {
		return bucket
	}
	old := bucket[i].Value
	for {
		v := V(m.rng.Uint64())
		if v != old {
			bucket[i].Value = v
			break
		}
	}
	m.changed = true
	return bucket
}

// randFirstKey replaces the first real element's key with a random one.
type randFirstKey[K constraints.Integer, V any] struct {
	base
	emptyKey K
	rng      *rand.Rand
}

// NewRandomizeFirstKey replaces the first real element's key with a random
// key that differs from both the old key and the sentinel, once.
func NewRandomizeFirstKey[K constraints.Integer, V any](emptyKey K, seed uint64) Manipulator[Bucket[K, V]] {
	return OnlyOnce[Bucket[K, V]](&randFirstKey[K, V]{emptyKey: emptyKey, rng: newRNG(seed)})
}

func (m *randFirstKey[K, V]) Manipulate(bucket Bucket[K, V]) Bucket[K, V] {
	i := firstReal(bucket, m.emptyKey)
	if i < 0 {
		return bucket
	}
	old := bucket[i].Key
	for {
		k := K(m.rng.Uint64())
		if k != old && k != m.emptyKey {
			bucket[i].Key = k
			break
		}
	}
	m.changed = true
	return bucket
}

// swapValues exchanges the values of two adjacent real elements.
type swapValues[K comparable, V comparable] struct {
	base
	emptyKey K
}

// NewSwapValues swaps the values of the first two adjacent real elements
// with distinct keys and distinct values, once. Swapping values between
// equal keys or equal values would not corrupt the reduction, so such pairs
// are skipped; a bucket without a qualifying pair is left alone.
func NewSwapValues[K comparable, V comparable](emptyKey K) Manipulator[Bucket[K, V]] {
	return OnlyOnce[Bucket[K, V]](&swapValues[K, V]{emptyKey: emptyKey})
}

func (m *swapValues[K, V]) Manipulate(bucket Bucket[K, V]) Bucket[K, V] {
	prev := -1
	for i := range bucket {
		if bucket[i].Key == m.emptyKey {
			continue
		}
		if prev >= 0 && bucket[prev].Key != bucket[i].Key && bucket[prev].Value != bucket[i].Value {
			bucket[prev].Value, bucket[i].Value = bucket[i].Value, bucket[prev].Value
			m.changed = true
			return bucket
		}
		prev = i
	}
	return bucket
}
