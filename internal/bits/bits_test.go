package bits

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return rand.New(rand.NewPCG(testSeed1^s1, testSeed2^s2))
}

func TestMask(t *testing.T) {
	cases := []struct {
		width uint
		want  uint64
	}{
		{0, 0},
		{1, 1},
		{8, 0xFF},
		{32, 0xFFFFFFFF},
		{63, 0x7FFFFFFFFFFFFFFF},
		{64, ^uint64(0)},
		{100, ^uint64(0)},
	}
	for _, c := range cases {
		if got := Mask(c.width); got != c.want {
			t.Errorf("Mask(%d) = 0x%X, want 0x%X", c.width, got, c.want)
		}
	}
}

func TestExtract(t *testing.T) {
	h := uint64(0xAABBCCDD11223344)
	cases := []struct {
		offset, width uint
		want          uint64
	}{
		{0, 8, 0x44},
		{8, 8, 0x33},
		{0, 16, 0x3344},
		{32, 16, 0xCCDD},
		{56, 8, 0xAA},
		{60, 8, 0x0A}, // runs off the top, high bits read as zero
		{64, 8, 0},
		{0, 64, h},
	}
	for _, c := range cases {
		if got := Extract(h, c.offset, c.width); got != c.want {
			t.Errorf("Extract(0x%X, %d, %d) = 0x%X, want 0x%X", h, c.offset, c.width, got, c.want)
		}
	}
}

// TestExtractDisjointRounds verifies the fingerprint use case: consecutive
// b-bit extractions reassemble into the original low r*b bits.
func TestExtractDisjointRounds(t *testing.T) {
	rng := newTestRNG(t)
	const b, r = 8, 4
	for i := 0; i < 1000; i++ {
		h := rng.Uint64()
		var rebuilt uint64
		for round := uint(0); round < r; round++ {
			rebuilt |= Extract(h, round*b, b) << (round * b)
		}
		if want := h & Mask(r*b); rebuilt != want {
			t.Fatalf("iter %d: rebuilt 0x%X, want 0x%X", i, rebuilt, want)
		}
	}
}

func TestFastRange32Range(t *testing.T) {
	rng := newTestRNG(t)
	for i := 0; i < 10000; i++ {
		n := rng.Uint32N(1000) + 1
		r := FastRange32(rng.Uint64(), n)
		if r >= n {
			t.Fatalf("iter %d: FastRange32 out of range: %d >= %d", i, r, n)
		}
	}
	if got := FastRange32(0xDEADBEEF, 0); got != 0 {
		t.Errorf("FastRange32(_, 0) = %d, want 0", got)
	}
}
