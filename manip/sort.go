package manip

import (
	"math/rand/v2"
	"unsafe"

	"golang.org/x/exp/constraints"

	intbits "github.com/lorenzhs/minicheck/internal/bits"
)

// Sort-side strategies operate on one internal block: a mutable slice of
// values. Random victim selection maps the strategy's own PRNG output to the
// block length without modulo bias.

func randIndex(rng *rand.Rand, n int) int {
	return int(intbits.FastRange32(rng.Uint64(), uint32(n)))
}

// dropLast removes the last element of the block.
type dropLast[V any] struct {
	base
}

// NewDropLast drops the block's last element, once.
func NewDropLast[V any]() Manipulator[[]V] {
	return OnlyOnce[[]V](&dropLast[V]{})
}

func (m *dropLast[V]) Manipulate(block []V) []V {
	if len(block) == 0 {
		return block
	}
	m.changed = true
	return block[:len(block)-1]
}

// addToEmpty appends a zero-value element to an empty block.
type addToEmpty[V any] struct {
	base
}

// NewAddToEmpty appends one zero-value element to the first empty block it
// sees. Non-empty blocks are left alone.
func NewAddToEmpty[V any]() Manipulator[[]V] {
	return OnlyOnce[[]V](&addToEmpty[V]{})
}

func (m *addToEmpty[V]) Manipulate(block []V) []V {
	if len(block) != 0 {
		return block
	}
	var zero V
	m.changed = true
	return append(block, zero)
}

// setEqual overwrites one element with the value of another.
type setEqual[V comparable] struct {
	base
	rng *rand.Rand
}

// NewSetEqual sets a random element equal to another random element with a
// different value, once. Blocks without two differing elements are left
// alone.
func NewSetEqual[V comparable](seed uint64) Manipulator[[]V] {
	return OnlyOnce[[]V](&setEqual[V]{rng: newRNG(seed)})
}

func (m *setEqual[V]) Manipulate(block []V) []V {
	if len(block) < 2 {
		return block
	}
	// Bounded retries: a block may be entirely uniform.
	for attempt := 0; attempt < 4*len(block); attempt++ {
		i := randIndex(m.rng, len(block))
		j := randIndex(m.rng, len(block))
		if block[i] != block[j] {
			block[i] = block[j]
			m.changed = true
			return block
		}
	}
	return block
}

// resetToDefault overwrites one element with the zero value.
type resetToDefault[V comparable] struct {
	base
	rng *rand.Rand
}

// NewResetToDefault resets a random non-zero element to the zero value,
// once.
func NewResetToDefault[V comparable](seed uint64) Manipulator[[]V] {
	return OnlyOnce[[]V](&resetToDefault[V]{rng: newRNG(seed)})
}

func (m *resetToDefault[V]) Manipulate(block []V) []V {
	if len(block) == 0 {
		return block
	}
	var zero V
	for attempt := 0; attempt < 4*len(block); attempt++ {
		i := randIndex(m.rng, len(block))
		if block[i] != zero {
			block[i] = zero
			m.changed = true
			return block
		}
	}
	return block
}

// duplicateRandom appends a copy of a random element.
type duplicateRandom[V any] struct {
	base
	rng *rand.Rand
}

// NewDuplicateRandom duplicates a random element of the block, once.
func NewDuplicateRandom[V any](seed uint64) Manipulator[[]V] {
	return OnlyOnce[[]V](&duplicateRandom[V]{rng: newRNG(seed)})
}

func (m *duplicateRandom[V]) Manipulate(block []V) []V {
	if len(block) == 0 {
		return block
	}
	i := randIndex(m.rng, len(block))
	m.changed = true
	return append(block, block[i])
}

// flipRandomBit toggles one random bit of one random element.
type flipRandomBit[V constraints.Integer] struct {
	base
	rng *rand.Rand
}

// NewFlipRandomBit flips a random bit of a random element, once.
func NewFlipRandomBit[V constraints.Integer](seed uint64) Manipulator[[]V] {
	return OnlyOnce[[]V](&flipRandomBit[V]{rng: newRNG(seed)})
}

func (m *flipRandomBit[V]) Manipulate(block []V) []V {
	if len(block) == 0 {
		return block
	}
	var zero V
	width := int(unsafe.Sizeof(zero)) * 8
	i := randIndex(m.rng, len(block))
	bit := randIndex(m.rng, width)
	block[i] ^= V(1) << bit
	m.changed = true
	return block
}

// randomizeElement replaces one random element with a random value.
type randomizeElement[V constraints.Integer] struct {
	base
	rng *rand.Rand
}

// NewRandomizeElement replaces a random element with a random value
// guaranteed to differ, once.
func NewRandomizeElement[V constraints.Integer](seed uint64) Manipulator[[]V] {
	return OnlyOnce[[]V](&randomizeElement[V]{rng: newRNG(seed)})
}

func (m *randomizeElement[V]) Manipulate(block []V) []V {
	if len(block) == 0 {
		return block
	}
	i := randIndex(m.rng, len(block))
	for {
		v := V(m.rng.Uint64())
		if v != block[i] {
			block[i] = v
			break
		}
	}
	m.changed = true
	return block
}

// MoveLastToNextBlock is the two-phase strategy: its single logical
// corruption spans exactly two invocations, so it is NOT gated by OnlyOnce.
// The first invocation on a non-empty block removes and stashes that block's
// last element; the second inserts the stashed element at the front of the
// block it is given. Later invocations are no-ops.
//
// If the run ends after the first phase the stashed element is simply
// dropped, which is a corruption in its own right and is still expected to
// be detected.
type MoveLastToNextBlock[V any] struct {
	base
	stash V
	phase int
}

// NewMoveLastToNextBlock builds the two-phase mover.
func NewMoveLastToNextBlock[V any]() *MoveLastToNextBlock[V] {
	return &MoveLastToNextBlock[V]{}
}

func (m *MoveLastToNextBlock[V]) Manipulate(block []V) []V {
	switch m.phase {
	case 0:
		if len(block) == 0 {
			return block
		}
		m.stash = block[len(block)-1]
		m.phase = 1
		m.changed = true
		return block[:len(block)-1]
	case 1:
		m.phase = 2
		block = append(block, m.stash)
		copy(block[1:], block)
		block[0] = m.stash
		return block
	default:
		return block
	}
}
