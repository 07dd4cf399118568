// Package parallel selects between sequential and parallel execution and
// provides the partition helpers used by ranking, matching, removal and
// batch query processing. Work is always split into disjoint parts so that
// every goroutine writes only to state it owns.
package parallel

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Policy selects how an operation executes.
type Policy int

const (
	Sequential Policy = iota
	Parallel
)

func (p Policy) String() string {
	switch p {
	case Sequential:
		return "seq"
	case Parallel:
		return "par"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "seq"/"sequential" and "par"/"parallel". An empty
// string selects Sequential.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "seq", "sequential":
		return Sequential, nil
	case "par", "parallel":
		return Parallel, nil
	default:
		return Sequential, fmt.Errorf("unknown execution mode %q", s)
	}
}

// Pool bounds the number of goroutines a parallel operation may use.
type Pool struct {
	workers int
}

// NewPool returns a Pool of the given size. A non-positive size means
// GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	return p.workers
}

// Parts returns how many parts Partition splits n items into.
func (p *Pool) Parts(policy Policy, n int) int {
	if n <= 0 {
		return 0
	}
	if policy == Sequential {
		return 1
	}
	return min(p.workers, n)
}

// Partition splits [0, n) into Parts(policy, n) contiguous ranges and calls
// fn once per range. Sequential runs the single range on the caller;
// Parallel runs every range in its own goroutine and waits for all of them.
func (p *Pool) Partition(policy Policy, n int, fn func(part, lo, hi int)) {
	parts := p.Parts(policy, n)
	switch parts {
	case 0:
		return
	case 1:
		fn(0, 0, n)
		return
	}
	size := (n + parts - 1) / parts
	var g errgroup.Group
	for part := 0; part < parts; part++ {
		lo := part * size
		hi := min(lo+size, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			fn(part, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEach calls fn for every index in [0, n). Under Parallel at most
// Workers() calls run at once. The first error is returned after all
// started calls finish.
func (p *Pool) ForEach(policy Policy, n int, fn func(i int) error) error {
	if policy == Sequential {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}
