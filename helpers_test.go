package minicheck

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"testing"

	"github.com/lorenzhs/minicheck/comm"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewPCG(testSeeds(t)))
}

// testSeeds derives a deterministic per-test seed pair from the test name.
// Scenario tests use it directly so every in-process rank can regenerate
// identical input data from its own PRNG instance.
func testSeeds(t testing.TB) (uint64, uint64) {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return testSeed1 ^ s1, testSeed2 ^ s2
}

// singleRank returns a one-rank collective context; with one rank every
// collective completes synchronously.
func singleRank(t testing.TB) comm.Context {
	t.Helper()
	ctxs, err := comm.NewLocal(1)
	if err != nil {
		t.Fatal(err)
	}
	return ctxs[0]
}

// countingContext wraps a comm.Context and counts issued collectives, for
// memoization tests.
type countingContext struct {
	comm.Context
	allReduces   int
	predecessors int
}

func (c *countingContext) AllReduceAny(op string, in []any, combine func(a, b any) any) ([]any, error) {
	c.allReduces++
	return c.Context.AllReduceAny(op, in, combine)
}

func (c *countingContext) PredecessorAny(op string, send []any) ([]any, error) {
	c.predecessors++
	return c.Context.PredecessorAny(op, send)
}

// sumByKey is the reference grouped-reduce used by reduce auditor tests.
func sumByKey(pairs []Pair[uint32, uint64]) map[uint32]uint64 {
	out := make(map[uint32]uint64, len(pairs))
	for _, p := range pairs {
		out[p.Key] += p.Value
	}
	return out
}

// mustConfig builds the standard test configuration: CRC32 keys, W=32, b=8, r=4.
func mustConfig(t testing.TB) Config[uint32] {
	t.Helper()
	cfg, err := NewConfig(CRC32Uint32, WithHashBits(32), WithBucketBits(8), WithRounds(4))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}
