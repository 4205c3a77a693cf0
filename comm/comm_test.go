// comm_test.go tests the in-process collective layer: AllReduce combining
// and determinism, the ranked predecessor exchange, operation-tag mismatch
// detection, and the RunLocal rank spawner.
package comm

import (
	"errors"
	"sync"
	"testing"

	checkerrors "github.com/lorenzhs/minicheck/errors"
)

func TestNewLocalRankCount(t *testing.T) {
	if _, err := NewLocal(0); !errors.Is(err, checkerrors.ErrRankCount) {
		t.Errorf("NewLocal(0): expected ErrRankCount, got %v", err)
	}
	ctxs, err := NewLocal(3)
	if err != nil {
		t.Fatalf("NewLocal(3): %v", err)
	}
	for r, ctx := range ctxs {
		if ctx.Rank() != r || ctx.NumRanks() != 3 {
			t.Errorf("rank %d: got Rank()=%d NumRanks()=%d", r, ctx.Rank(), ctx.NumRanks())
		}
	}
}

func TestAllReduceSum(t *testing.T) {
	const n = 4
	results := make([][]uint64, n)
	err := RunLocal(n, func(ctx Context) error {
		r := uint64(ctx.Rank())
		out, err := AllReduce(ctx, "test/sum", []uint64{r, 1, 10 * r},
			func(a, b uint64) uint64 { return a + b })
		if err != nil {
			return err
		}
		results[ctx.Rank()] = out
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint64{6, 4, 60} // 0+1+2+3, 1*4, 10*(0+1+2+3)
	for r, got := range results {
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("rank %d element %d: got %d, want %d", r, i, got[i], want[i])
			}
		}
	}
}

// TestAllReduceRankOrder verifies the fold happens in rank order, so even a
// non-commutative combine gives every rank the same deterministic result.
func TestAllReduceRankOrder(t *testing.T) {
	const n = 3
	results := make([]string, n)
	err := RunLocal(n, func(ctx Context) error {
		tag := string(rune('a' + ctx.Rank()))
		out, err := AllReduce(ctx, "test/concat", []string{tag},
			func(a, b string) string { return a + b })
		if err != nil {
			return err
		}
		results[ctx.Rank()] = out[0]
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for r, got := range results {
		if got != "abc" {
			t.Errorf("rank %d: got %q, want %q", r, got, "abc")
		}
	}
}

func TestAllReduceRepeated(t *testing.T) {
	const n = 2
	err := RunLocal(n, func(ctx Context) error {
		for round := 0; round < 50; round++ {
			out, err := AllReduce(ctx, "test/repeat", []int{1},
				func(a, b int) int { return a + b })
			if err != nil {
				return err
			}
			if out[0] != n {
				t.Errorf("round %d: got %d, want %d", round, out[0], n)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAllReduceMismatch(t *testing.T) {
	const n = 2
	var mu sync.Mutex
	var errs []error
	_ = RunLocal(n, func(ctx Context) error {
		op := "test/a"
		if ctx.Rank() == 1 {
			op = "test/b"
		}
		_, err := AllReduce(ctx, op, []int{1}, func(a, b int) int { return a + b })
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		return nil
	})
	if len(errs) != n {
		t.Fatalf("expected %d results, got %d", n, len(errs))
	}
	for i, err := range errs {
		if !errors.Is(err, checkerrors.ErrCollectiveMismatch) {
			t.Errorf("rank result %d: expected ErrCollectiveMismatch, got %v", i, err)
		}
	}
}

func TestAllReduceWidthMismatch(t *testing.T) {
	const n = 2
	err := RunLocal(n, func(ctx Context) error {
		in := []int{1}
		if ctx.Rank() == 1 {
			in = []int{1, 2}
		}
		_, err := AllReduce(ctx, "test/width", in, func(a, b int) int { return a + b })
		if !errors.Is(err, checkerrors.ErrCollectiveMismatch) {
			t.Errorf("rank %d: expected ErrCollectiveMismatch, got %v", ctx.Rank(), err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestPredecessorChain(t *testing.T) {
	const n = 4
	received := make([][]int, n)
	err := RunLocal(n, func(ctx Context) error {
		send := []int{ctx.Rank() * 100, ctx.Rank()}
		got, err := Predecessor(ctx, "test/pred", send)
		if err != nil {
			return err
		}
		received[ctx.Rank()] = got
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if received[0] != nil {
		t.Errorf("rank 0 should receive nil, got %v", received[0])
	}
	for r := 1; r < n; r++ {
		want0, want1 := (r-1)*100, r-1
		if len(received[r]) != 2 || received[r][0] != want0 || received[r][1] != want1 {
			t.Errorf("rank %d: received %v, want [%d %d]", r, received[r], want0, want1)
		}
	}
}

func TestPredecessorSingleRank(t *testing.T) {
	err := RunLocal(1, func(ctx Context) error {
		got, err := Predecessor(ctx, "test/pred1", []int{42})
		if err != nil {
			return err
		}
		if got != nil {
			t.Errorf("single rank should receive nil, got %v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunLocalPropagatesError(t *testing.T) {
	sentinel := errors.New("rank failure")
	err := RunLocal(2, func(ctx Context) error {
		if ctx.Rank() == 1 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected rank failure to propagate, got %v", err)
	}
}
