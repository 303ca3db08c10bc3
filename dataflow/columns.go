package dataflow

import (
	"github.com/queryosity-go/queryosity/column"
)

// Lazy is a column handle: one Column[V] replica per slot, plus the
// Dataflow it was booked against. It never holds a value itself --
// reading one forces df.analyze() first (spec.md §4.7's lazy
// evaluation, spec.md §8 scenario 6).
type Lazy[V any] struct {
	df       *Dataflow
	replicas []column.Column[V]
}

// AnyLazy is the type-erased view a Lazy[V] presents to variable-arity
// builders (Define, SelectCut/SelectWeight, query Fill tuples) that
// need a column's per-slot Observable without knowing V. Only Lazy[V]
// implements it: the unexported method seals the interface to this
// package, the same "static front door, type-erased back room" pattern
// query.Terminal uses for merge (see DESIGN.md).
type AnyLazy interface {
	observableAt(slot int) column.Observable
}

func (l *Lazy[V]) observableAt(slot int) column.Observable {
	return column.Observe[V](l.replicas[slot])
}

// Value returns the merged result value: for a column this is simply
// its slot-0 replica's Value after a run, since columns don't merge
// across slots (only queries do) -- reading any column handle forces
// analyze so the underlying run has actually executed.
func (l *Lazy[V]) Value() V {
	l.df.analyze()
	return l.replicas[0].Value()
}

// ReadColumn books a dataset-backed column, one replica per slot
// (spec.md §4.1's read<V>(columnName)).
func ReadColumn[V any](df *Dataflow, name string) *Lazy[V] {
	reps := make([]column.Column[V], df.nslots)
	for s := 0; s < df.nslots; s++ {
		r := column.NewReader[V](df.src, name)
		reps[s] = r
		df.register(s, r)
	}
	return &Lazy[V]{df: df, replicas: reps}
}

// Constant books a fixed value shared by every slot (spec.md §4.1's
// constant<V>(value)).
func Constant[V any](df *Dataflow, v V) *Lazy[V] {
	reps := make([]column.Column[V], df.nslots)
	for s := 0; s < df.nslots; s++ {
		f := column.NewFixed[V](v)
		reps[s] = f
		df.register(s, f)
	}
	return &Lazy[V]{df: df, replicas: reps}
}

// Convert adapts an existing column to another type with a pure
// function (spec.md §4.1's convert<To>(column)). The adapter owns no
// lifecycle of its own; it isn't separately registered.
func Convert[To, From any](col *Lazy[From], conv func(From) To) *Lazy[To] {
	df := col.df
	reps := make([]column.Column[To], df.nslots)
	for s := 0; s < df.nslots; s++ {
		reps[s] = column.NewConversion[To, From](col.replicas[s], conv)
	}
	return &Lazy[To]{df: df, replicas: reps}
}

// Expression1 books a pure one-input equation column (spec.md §4.1's
// expression<F>(inputs...)).
func Expression1[A, R any](df *Dataflow, fn func(A) R, a *Lazy[A]) *Lazy[R] {
	reps := make([]column.Column[R], df.nslots)
	for s := 0; s < df.nslots; s++ {
		c := column.Equation1[A, R](fn, a.observableAt(s))
		reps[s] = c
		df.register(s, c)
	}
	return &Lazy[R]{df: df, replicas: reps}
}

// Expression2 is the two-input analogue of Expression1.
func Expression2[A, B, R any](df *Dataflow, fn func(A, B) R, a *Lazy[A], b *Lazy[B]) *Lazy[R] {
	reps := make([]column.Column[R], df.nslots)
	for s := 0; s < df.nslots; s++ {
		c := column.Equation2[A, B, R](fn, a.observableAt(s), b.observableAt(s))
		reps[s] = c
		df.register(s, c)
	}
	return &Lazy[R]{df: df, replicas: reps}
}

// Expression3 is the three-input analogue of Expression1.
func Expression3[A, B, C, R any](df *Dataflow, fn func(A, B, C) R, a *Lazy[A], b *Lazy[B], c *Lazy[C]) *Lazy[R] {
	reps := make([]column.Column[R], df.nslots)
	for s := 0; s < df.nslots; s++ {
		e := column.Equation3[A, B, C, R](fn, a.observableAt(s), b.observableAt(s), c.observableAt(s))
		reps[s] = e
		df.register(s, e)
	}
	return &Lazy[R]{df: df, replicas: reps}
}

// Expression4 is the four-input analogue of Expression1.
func Expression4[A, B, C, D, R any](df *Dataflow, fn func(A, B, C, D) R, a *Lazy[A], b *Lazy[B], c *Lazy[C], d *Lazy[D]) *Lazy[R] {
	reps := make([]column.Column[R], df.nslots)
	for s := 0; s < df.nslots; s++ {
		e := column.Equation4[A, B, C, D, R](fn, a.observableAt(s), b.observableAt(s), c.observableAt(s), d.observableAt(s))
		reps[s] = e
		df.register(s, e)
	}
	return &Lazy[R]{df: df, replicas: reps}
}

// Define books a user-authored column.Definition, wired to a
// variable-length, heterogeneous input list (spec.md §4.1's
// definition<D>(inputs...)). newD is called once per slot, so a
// stateful definition gets one independent instance per slot.
func Define[D column.Definition[R], R any](df *Dataflow, newD func(inputs []column.Observable) D, inputs ...AnyLazy) *Lazy[R] {
	ev := column.NewEvaluator[D, R](newD)
	reps := make([]column.Column[R], df.nslots)
	for s := 0; s < df.nslots; s++ {
		obs := make([]column.Observable, len(inputs))
		for i, in := range inputs {
			obs[i] = in.observableAt(s)
		}
		c := ev.Evaluate(obs...)
		reps[s] = c
		df.register(s, c)
	}
	return &Lazy[R]{df: df, replicas: reps}
}
