// Package processor holds the pool of slots: it distributes a
// dataset's partitions across N players, joins, and leaves the merge
// step to the caller (spec.md §4.6). The pool itself is grounded
// directly on plan/exec.go's pool/mkpool/(pool).do in the teacher,
// kept structurally identical because it already implements exactly
// the "parallel threads, cooperative dequeue from a shared partition
// queue" model spec.md §5 calls for.
package processor

import (
	"runtime"
	"sync"

	"github.com/queryosity-go/queryosity/dataset"
	"github.com/queryosity-go/queryosity/player"
	"go.uber.org/zap"
)

// task is one unit of pool work: run player i on a partition.
type task struct {
	i int
	f func(int)
}

// Pool is a work queue for a goroutine pool, identical in shape to the
// teacher's plan.pool: a buffered channel of tasks drained by a fixed
// number of goroutines. Closing the pool cleans up the goroutines.
type Pool chan task

// NewPool starts n goroutines draining a pool of the given size.
func NewPool(n int) Pool {
	if n <= 0 {
		panic("processor: pool size out of range")
	}
	ch := make(Pool, n)
	for i := 0; i < n; i++ {
		go func() {
			for t := range ch {
				t.f(t.i)
			}
		}()
	}
	return ch
}

// Do enqueues f to run with argument i on some pool goroutine.
func (p Pool) Do(i int, f func(int)) { p <- task{i, f} }

// Close shuts down the pool's goroutines. Callers must not call Do
// after Close.
func (p Pool) Close() { close(p) }

// Processor owns concurrency N >= 1 and drives one run of a dataset
// against a slice of per-slot players (spec.md §4.6).
type Processor struct {
	// Concurrency is the number of slots to run. 0 means
	// runtime.NumCPU().
	Concurrency int
	// Head, if >= 0, caps the total entries processed across all
	// partitions (spec.md §4.6's head(n_rows)).
	Head int64
	Log  *zap.Logger
}

// slots returns the resolved concurrency, clamped to at least 1.
func (p *Processor) slots() int {
	n := p.Concurrency
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run tells src how many slots it has (Parallelize), then asks it to
// partition itself (Partition) -- in that order, since a Source's
// Partition shape generally depends on the slot count it was just
// given. It collects the resulting partitions (capping them at Head if
// set) and dispatches them across newPlayer-constructed players, one
// per slot, joining before returning. A Source is free to hand back
// more partitions than slots; Run's goroutines cooperatively dequeue
// from the shared partition queue until it's drained, so a slot that
// finishes early simply pulls the next partition rather than sitting
// idle (spec.md §4.6 item 4, §5). newPlayer must build a structurally
// identical action graph for the given slot index; Run does not know
// or care what the graph contains.
func (p *Processor) Run(src dataset.Source, newPlayer func(slot int) *player.Player) error {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	n := p.slots()
	if err := src.Parallelize(n); err != nil {
		return err
	}
	parts, err := src.Partition()
	if err != nil {
		return err
	}
	if p.Head >= 0 {
		parts = dataset.TruncatePartitions(parts, p.Head)
	}
	if len(parts) > 0 && len(parts) < n {
		// Fewer partitions than requested slots (a small dataset):
		// don't spin up goroutines with nothing to ever dequeue.
		n = len(parts)
	}
	log.Debug("dataset partitioned",
		zap.Int("partitions", len(parts)),
		zap.Int("slots", n),
		zap.Int64("entries", dataset.TotalEntries(parts)),
	)
	if len(parts) == 0 {
		// spec.md §4.9: zero partitions is a no-op; queries still
		// finalize with identity accumulators, so every slot still
		// runs its lifecycle over an empty range.
		players := make([]*player.Player, n)
		for s := 0; s < n; s++ {
			players[s] = newPlayer(s)
		}
		for _, pl := range players {
			if err := pl.Run(0, 0); err != nil {
				return err
			}
		}
		return nil
	}

	queue := make(chan dataset.Partition, len(parts))
	for _, part := range parts {
		queue <- part
	}
	close(queue)

	players := make([]*player.Player, n)
	for s := 0; s < n; s++ {
		players[s] = newPlayer(s)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for s := 0; s < n; s++ {
		go func(slot int) {
			defer wg.Done()
			for part := range queue {
				if err := players[slot].Run(part.Begin, part.End); err != nil {
					errs[slot] = err
					// spec.md §7: let the remaining slots finish
					// their current partition (each other goroutine
					// keeps draining the queue independently); this
					// slot stops taking new work and the first
					// captured error is surfaced after the join.
					return
				}
			}
		}(s)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
