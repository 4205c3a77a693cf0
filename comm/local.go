package comm

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	checkerrors "github.com/lorenzhs/minicheck/errors"
)

// hub is the shared state behind a set of local rank contexts.
// AllReduce rendezvous uses a mutex-guarded slot; the last rank to arrive
// performs the fold in rank order (deterministic) and wakes the others.
// Predecessor exchange uses one single-buffered channel per receiving rank.
type hub struct {
	n    int
	mu   sync.Mutex
	cur  *rendezvous
	pred []chan predMsg
}

type rendezvous struct {
	op      string
	width   int
	contrib [][]any
	arrived int
	result  []any
	err     error
	done    chan struct{}
}

type predMsg struct {
	op    string
	items []any
}

func newHub(n int) *hub {
	h := &hub{n: n, pred: make([]chan predMsg, n)}
	for i := range h.pred {
		h.pred[i] = make(chan predMsg, 1)
	}
	return h
}

func (h *hub) allReduce(rank int, op string, in []any, combine func(a, b any) any) ([]any, error) {
	h.mu.Lock()
	if h.cur == nil {
		h.cur = &rendezvous{
			op:      op,
			width:   len(in),
			contrib: make([][]any, h.n),
			done:    make(chan struct{}),
		}
	}
	c := h.cur
	if c.op != op || c.width != len(in) {
		c.err = fmt.Errorf("%w: rank %d issued %q/%d against %q/%d",
			checkerrors.ErrCollectiveMismatch, rank, op, len(in), c.op, c.width)
	}
	c.contrib[rank] = in
	c.arrived++
	if c.arrived == h.n {
		if c.err == nil {
			acc := make([]any, c.width)
			copy(acc, c.contrib[0])
			for r := 1; r < h.n; r++ {
				for i := range acc {
					acc[i] = combine(acc[i], c.contrib[r][i])
				}
			}
			c.result = acc
		}
		h.cur = nil
		close(c.done)
	}
	h.mu.Unlock()

	<-c.done
	if c.err != nil {
		return nil, c.err
	}
	// Each rank gets its own copy so stores into the result never alias.
	out := make([]any, len(c.result))
	copy(out, c.result)
	return out, nil
}

func (h *hub) predecessor(rank int, op string, send []any) ([]any, error) {
	if rank+1 < h.n {
		h.pred[rank+1] <- predMsg{op: op, items: send}
	}
	if rank == 0 {
		return nil, nil
	}
	m := <-h.pred[rank]
	if m.op != op {
		return nil, fmt.Errorf("%w: rank %d received %q, expected %q",
			checkerrors.ErrCollectiveMismatch, rank, m.op, op)
	}
	return m.items, nil
}

// localContext is one rank's view of an in-process hub.
type localContext struct {
	hub  *hub
	rank int
}

func (c *localContext) Rank() int     { return c.rank }
func (c *localContext) NumRanks() int { return c.hub.n }

func (c *localContext) AllReduceAny(op string, in []any, combine func(a, b any) any) ([]any, error) {
	return c.hub.allReduce(c.rank, op, in, combine)
}

func (c *localContext) PredecessorAny(op string, send []any) ([]any, error) {
	return c.hub.predecessor(c.rank, op, send)
}

// NewLocal creates n in-process rank contexts sharing one hub.
// Each context must be driven by its own goroutine; collectives block until
// all n ranks participate.
func NewLocal(n int) ([]Context, error) {
	if n < 1 {
		return nil, checkerrors.ErrRankCount
	}
	h := newHub(n)
	ctxs := make([]Context, n)
	for r := 0; r < n; r++ {
		ctxs[r] = &localContext{hub: h, rank: r}
	}
	return ctxs, nil
}

// RunLocal runs fn once per rank, each on its own goroutine, and waits for
// all of them. The first non-nil error is returned. A rank that errors out
// before reaching a collective its peers are blocked on will deadlock the
// run; this mirrors the fail-stop behavior of a real collective layer.
func RunLocal(numRanks int, fn func(Context) error) error {
	ctxs, err := NewLocal(numRanks)
	if err != nil {
		return err
	}
	var g errgroup.Group
	for _, ctx := range ctxs {
		g.Go(func() error { return fn(ctx) })
	}
	return g.Wait()
}
