// Package queryosity is the public argument-type surface of spec.md
// §6: a thin, friendlier front door over package dataflow's generic
// builder functions, plus the nominal/variation wrapper types and the
// output/result distinction the original C++ library exposes (see
// SPEC_FULL.md's Supplemented Features).
package queryosity

import (
	"go.uber.org/zap"

	"github.com/queryosity-go/queryosity/column"
	"github.com/queryosity-go/queryosity/dataflow"
	"github.com/queryosity-go/queryosity/dataset"
	"github.com/queryosity-go/queryosity/query"
	"github.com/queryosity-go/queryosity/queryset"
	"github.com/queryosity-go/queryosity/varied"
)

// Dataflow is the engine instance: one dataset, a fixed slot count, and
// every column/selection/query booked against it.
type Dataflow = dataflow.Dataflow

// Option configures a Dataflow at Open time.
type Option = dataflow.Option

// Column is a lazy, per-slot-replicated column handle.
type Column[V any] = dataflow.Lazy[V]

// Selection is a cutflow node handle.
type Selection = dataflow.Sel

// Booker holds a query constructor and its registered fill tuples,
// not yet bound to a Selection.
type Booker[Q query.Query[R], R any] = dataflow.QBooker[Q, R]

// Output is a booked query handle (the original's output<Q>): lazy,
// composable, analyze-on-first-read.
type Output[Q query.Query[R], R any] = dataflow.Output[Q, R]

// Input is the collaborator contract a concrete dataset implements
// (spec.md §6).
type Input = dataset.Source

// Definition is the interface a user-authored stateful/stateless
// column computation implements.
type Definition[R any] = column.Definition[R]

// Expr is the boxed, dynamically-typed observable a variable-arity
// builder (Define, SelectCut, SelectWeight) reads its inputs through.
type Expr = dataflow.AnyLazy

// Open builds a Dataflow over src (spec.md §4.1's dataflow
// constructor).
func Open(src dataset.Source, opts ...Option) (*Dataflow, error) {
	return dataflow.New(src, opts...)
}

// MultithreadEnable fixes the slot count explicitly.
func MultithreadEnable(n int) Option { return dataflow.MultithreadEnable(n) }

// MultithreadDisable pins the dataflow to a single slot.
func MultithreadDisable() Option { return dataflow.MultithreadDisable() }

// Head caps the total entries processed across every partition.
func Head(n int64) Option { return dataflow.Head(n) }

// Weight sets the global weight multiplier applied at query book time.
func Weight(w float64) Option { return dataflow.Weight(w) }

// Logger attaches a structured logger to the dataflow.
func Logger(l *zap.Logger) Option { return dataflow.Logger(l) }

// ReadColumn books a dataset-backed column.
func ReadColumn[V any](df *Dataflow, name string) *Column[V] {
	return dataflow.ReadColumn[V](df, name)
}

// Constant books a column holding the same value on every entry.
func Constant[V any](df *Dataflow, v V) *Column[V] {
	return dataflow.Constant[V](df, v)
}

// Convert adapts an existing column to another type with a pure
// function.
func Convert[To, From any](c *Column[From], conv func(From) To) *Column[To] {
	return dataflow.Convert[To, From](c, conv)
}

// Expression1 books a pure one-input equation column.
func Expression1[A, R any](df *Dataflow, fn func(A) R, a *Column[A]) *Column[R] {
	return dataflow.Expression1(df, fn, a)
}

// Expression2 books a pure two-input equation column.
func Expression2[A, B, R any](df *Dataflow, fn func(A, B) R, a *Column[A], b *Column[B]) *Column[R] {
	return dataflow.Expression2(df, fn, a, b)
}

// Expression3 books a pure three-input equation column.
func Expression3[A, B, C, R any](df *Dataflow, fn func(A, B, C) R, a *Column[A], b *Column[B], c *Column[C]) *Column[R] {
	return dataflow.Expression3(df, fn, a, b, c)
}

// Expression4 books a pure four-input equation column.
func Expression4[A, B, C, D, R any](df *Dataflow, fn func(A, B, C, D) R, a *Column[A], b *Column[B], c *Column[C], d *Column[D]) *Column[R] {
	return dataflow.Expression4(df, fn, a, b, c, d)
}

// Define books a user-authored column.Definition against a
// variable-length, heterogeneous input list.
func Define[D Definition[R], R any](df *Dataflow, newD func(inputs []column.Observable) D, inputs ...Expr) *Column[R] {
	return dataflow.Define[D, R](df, newD, inputs...)
}

// ApplyCut books a cut selection from an existing boolean column.
func ApplyCut(df *Dataflow, name string, parent *Selection, decision *Column[bool]) *Selection {
	return dataflow.ApplyCut(df, name, parent, decision)
}

// ApplyWeight books a weight selection from an existing real-valued
// column.
func ApplyWeight(df *Dataflow, name string, parent *Selection, decision *Column[float64]) *Selection {
	return dataflow.ApplyWeight(df, name, parent, decision)
}

// SelectCut books a cut selection computed from a variable-length
// input list in one step.
func SelectCut(df *Dataflow, name string, parent *Selection, fn func(vals []any) bool, inputs ...Expr) *Selection {
	return dataflow.SelectCut(df, name, parent, fn, inputs...)
}

// SelectWeight is the weight analogue of SelectCut.
func SelectWeight(df *Dataflow, name string, parent *Selection, fn func(vals []any) float64, inputs ...Expr) *Selection {
	return dataflow.SelectWeight(df, name, parent, fn, inputs...)
}

// Make books a query constructor, deferred until Book binds it to a
// selection.
func Make[Q query.Query[R], R any](df *Dataflow, newQ func() Q) *Booker[Q, R] {
	return dataflow.Make[Q, R](df, newQ)
}

// Result is the original's result<Q> convenience: it forces analysis
// immediately and returns the merged value, for callers (CLI, scripts)
// that don't want to hold onto the lazy Output handle.
func Result[Q query.Query[R], R any](o *Output[Q, R]) R {
	return o.Result()
}

// Yield books the selection-yield counter (spec.md §6's
// `yield(sels...)`) against every given selection at once, keyed by
// selection name, modeled on
// `_examples/original_source/include/queryosity/selection_yield.hpp`'s
// `yield<Sels...>`. Each entry is lazy like any other Output: the first
// Result() read on any of them runs the whole dataflow once, and later
// reads return the cached merge.
func Yield(df *Dataflow, sels ...*Selection) map[string]*Output[*queryset.Counter, queryset.CounterResult] {
	out := make(map[string]*Output[*queryset.Counter, queryset.CounterResult], len(sels))
	for _, sel := range sels {
		out[sel.Name()] = Make[*queryset.Counter, queryset.CounterResult](df, queryset.NewCounter).Book(sel)
	}
	return out
}

// Nominal wraps the unvaried baseline value passed to Vary (the
// original's column_nominal.hpp wrapper).
type Nominal[V any] struct{ Value V }

// Variation wraps one named alternate value passed to Vary (the
// original's column_variation.hpp wrapper).
type Variation[V any] struct {
	Name  string
	Value V
}

// Vary assembles a nominal value and its named alternates into a
// varied.Varied (spec.md §4.8). V is typically *Column[T] or
// *Selection; any comparable builder-handle type works.
func Vary[V any](nominal Nominal[V], variations ...Variation[V]) *varied.Varied[V] {
	alts := make(map[string]V, len(variations))
	for _, v := range variations {
		alts[v.Name] = v.Value
	}
	return varied.Vary(nominal.Value, alts)
}
