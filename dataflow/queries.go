package dataflow

import (
	"github.com/queryosity-go/queryosity/query"
)

// QBooker is the "todo" helper for a query: a constructor plus
// zero-or-more registered fill-column tuples, not yet bound to a
// selection (spec.md §4.4's make<Q>(args...)).
type QBooker[Q query.Query[R], R any] struct {
	df    *Dataflow
	newQ  func() Q
	fills [][]AnyLazy
}

// Make books a query constructor, deferred until Book binds it to a
// selection.
func Make[Q query.Query[R], R any](df *Dataflow, newQ func() Q) *QBooker[Q, R] {
	return &QBooker[Q, R]{df: df, newQ: newQ}
}

// Fill registers one fill-column tuple, replayed on every passing entry
// once the query is booked (spec.md §4.4). Fill may be called zero or
// more times and returns the same booker for chaining.
func (b *QBooker[Q, R]) Fill(cols ...AnyLazy) *QBooker[Q, R] {
	b.fills = append(b.fills, cols)
	return b
}

// Book instantiates one replica per slot, bound to sel, and returns the
// Output handle that reads its merged result (spec.md §4.4's
// book(booker, selection)).
func (b *QBooker[Q, R]) Book(sel *Sel) *Output[Q, R] {
	df := b.df
	reps := make([]*query.Node[Q, R], df.nslots)
	for s := 0; s < df.nslots; s++ {
		qb := query.Make[Q, R](b.newQ)
		for _, tup := range b.fills {
			qb.Fill(observablesAt(tup, s)...)
		}
		n := qb.Book(sel.replicas[s], df.weight)
		reps[s] = n
		df.register(s, n)
	}
	out := &Output[Q, R]{df: df, replicas: reps}
	terms := make([]query.Terminal, len(reps))
	for i, r := range reps {
		terms[i] = r
	}
	df.registerTerminal(terms)
	return out
}

// Output is a booked query handle: one query.Node replica per slot.
// Result forces a run (idempotently) and returns the cross-slot merged
// value (spec.md §4.4, §4.7).
type Output[Q query.Query[R], R any] struct {
	df       *Dataflow
	replicas []*query.Node[Q, R]
}

// Result triggers df.analyze() (a no-op if already current) and
// returns the merged result.
func (o *Output[Q, R]) Result() R {
	o.df.analyze()
	return o.replicas[0].MergedResult()
}
