// Package query owns query nodes: accumulators bound to exactly one
// selection and zero-or-more fill-column tuples (spec.md §3, §4.4).
package query

import (
	"github.com/queryosity-go/queryosity/action"
	"github.com/queryosity-go/queryosity/column"
	"github.com/queryosity-go/queryosity/selection"
)

// Query is implemented by a concrete accumulator. R is the result
// type; Merge must be associative and commutative (spec.md §6, §8).
type Query[R any] interface {
	action.Action
	// Count registers one passing entry with the given scaled weight.
	Count(w float64)
	// Result returns this slot's accumulator state.
	Result() R
	// Merge reduces one result per slot into a single result. It must
	// not depend on the order of results.
	Merge(results []R) R
}

// Fillable is additionally implemented by queries that consume
// per-entry column values, not just the selection weight (spec.md
// §4.4's "fillable" queries, e.g. histograms).
type Fillable[R any] interface {
	Query[R]
	// Fill is called once per registered fill-tuple per passing
	// entry, with vals holding one boxed value per column in the
	// tuple, in registration order, and w the scaled selection weight.
	Fill(vals []any, w float64)
}

// Terminal is the type-erased view of a query.Node used only for
// cross-slot merge orchestration (dataflow/processor never need to
// know R to drive a run to completion). This mirrors the teacher's own
// plan.Op, which keeps a statically-typed builder API in front of a
// type-erased runtime tree so the scheduler never needs type
// parameters (see DESIGN.md).
type Terminal interface {
	action.Action
	resultAny() any
	mergeAny(results []any) any
}

// Merge reduces one Terminal replica per slot (replicas[0] is the
// slot-0 instance) into a single boxed result, storing it back onto
// replicas[0] so a statically-typed caller can retrieve it without
// going through the boxed interface again. It panics if replicas is
// empty: a Dataflow with zero slots is a construction error, not a
// runtime condition.
func Merge(replicas []Terminal) any {
	if len(replicas) == 0 {
		panic("query: Merge called with no replicas")
	}
	results := make([]any, len(replicas))
	for i, r := range replicas {
		results[i] = r.resultAny()
	}
	return replicas[0].mergeAny(results)
}

// Node is the query action that does per-entry count/fill (spec.md
// §4.4's per-entry execution rule): if its bound selection passes, it
// counts scale*weight and, if Q is Fillable, replays every registered
// fill tuple.
type Node[Q Query[R], R any] struct {
	action.Base
	query    Q
	sel      *selection.Selection
	fills    [][]column.Observable
	scale    float64
	fillable Fillable[R]
	merged   R
}

// NewNode binds query to sel with the given fill tuples and a scale
// factor (spec.md §4.6's global weight multiplies every query's scale
// -- dataflow applies it at book time by passing its global weight as
// scale).
func NewNode[Q Query[R], R any](query Q, sel *selection.Selection, fills [][]column.Observable, scale float64) *Node[Q, R] {
	n := &Node[Q, R]{query: query, sel: sel, fills: fills, scale: scale}
	if f, ok := any(query).(Fillable[R]); ok {
		n.fillable = f
	}
	return n
}

func (n *Node[Q, R]) Vary(name string) { n.query.Vary(name) }

func (n *Node[Q, R]) Initialize(slot int, begin, end int64) error {
	return n.query.Initialize(slot, begin, end)
}

func (n *Node[Q, R]) Execute(slot int, entry int64) error {
	if err := n.query.Execute(slot, entry); err != nil {
		return err
	}
	if !n.sel.Passed() {
		return nil
	}
	w := n.scale * n.sel.Weight()
	n.query.Count(w)
	if n.fillable != nil {
		for _, tup := range n.fills {
			vals := make([]any, len(tup))
			for i, o := range tup {
				vals[i] = o.Get()
			}
			n.fillable.Fill(vals, w)
		}
	}
	return nil
}

func (n *Node[Q, R]) Finalize(slot int) error { return n.query.Finalize(slot) }

// Result returns this slot's accumulator result, pre-merge.
func (n *Node[Q, R]) Result() R { return n.query.Result() }

func (n *Node[Q, R]) resultAny() any { return n.Result() }

func (n *Node[Q, R]) mergeAny(results []any) any {
	rs := make([]R, len(results))
	for i, r := range results {
		rs[i] = r.(R)
	}
	n.merged = n.query.Merge(rs)
	return n.merged
}

// MergedResult returns the cross-slot reduction computed by the most
// recent call to Merge([]Terminal{...}) that included this node as
// replicas[0]. Calling it before any such Merge returns the zero value
// of R.
func (n *Node[Q, R]) MergedResult() R { return n.merged }

// Booker is the "todo" helper for a query: it holds the constructor
// arguments (via newQ) plus a list of registered fill-column tuples,
// and does not yet observe a selection (spec.md §4.4's make<Q>(args…)).
type Booker[Q Query[R], R any] struct {
	newQ  func() Q
	fills [][]column.Observable
}

// Make builds a Booker around a per-slot constructor for Q.
func Make[Q Query[R], R any](newQ func() Q) *Booker[Q, R] {
	return &Booker[Q, R]{newQ: newQ}
}

// Fill registers one fill-column tuple, replayed on every passing
// entry once the query is booked. Fill may be called zero or more
// times on the same Booker (spec.md §4.4).
func (b *Booker[Q, R]) Fill(obs ...column.Observable) *Booker[Q, R] {
	b.fills = append(b.fills, obs)
	return b
}

// Book instantiates Q, binds it to sel, and replays the registered
// fills onto the new Node (spec.md §4.4's book(booker, selection)).
// scale is the dataflow's global weight multiplier.
func (b *Booker[Q, R]) Book(sel *selection.Selection, scale float64) *Node[Q, R] {
	q := b.newQ()
	fills := make([][]column.Observable, len(b.fills))
	copy(fills, b.fills)
	return NewNode[Q, R](q, sel, fills, scale)
}
