// Package column owns column nodes: the per-entry typed value producers
// of a queryosity graph. See spec.md §3 ("Column node") and §4.2.
package column

import (
	"github.com/pkg/errors"

	"github.com/queryosity-go/queryosity/action"
	"github.com/queryosity-go/queryosity/dataset"
)

// Column is implemented by every node that produces a value of type V
// for the entry currently being processed on its slot.
type Column[V any] interface {
	action.Action
	// Value returns the value for the entry most recently passed to
	// Execute on this slot. It is the caller's responsibility to
	// Execute the action first; calculated columns compute their
	// value lazily on the first Value call after Execute, not during
	// Execute itself.
	Value() V
}

// Observable is a cheap-to-copy, non-owning read-only view over a
// Column. TypedObservable is its one implementation: it wraps any
// Column[V] directly, including a Conversion (which narrows/widens
// between compatible value types), so downstream code (query fill
// bindings in particular) never needs to know which kind of column it
// reads.
type Observable interface {
	// Get returns the observed value boxed as any. Boxing is the Go
	// analogue of the original's two-level "variable owns a boxed
	// view, observable borrows the variable" indirection (spec.md §9):
	// a single dynamically-typed accessor stands in for the
	// base/derived and conversion adapters the original needed
	// separate C++ template machinery for.
	Get() any
}

// TypedObservable adapts a Column[V] to the boxed Observable interface.
type TypedObservable[V any] struct {
	col Column[V]
}

func (o TypedObservable[V]) Get() any { return o.col.Value() }

// Observe wraps a column as an Observable.
func Observe[V any](c Column[V]) TypedObservable[V] {
	return TypedObservable[V]{col: c}
}

// Reader pulls an entry's value from the dataset source. It is the
// "reader" column variant of spec.md §3.
type Reader[V any] struct {
	action.Base
	src  dataset.Source
	name string
	rdr  dataset.TypedColumnReader[V]
	slot int
	entr int64
}

// NewReader builds a Reader bound to a named field of src. The
// underlying dataset.TypedColumnReader isn't resolved until Initialize,
// since the source may not be ready (parallelized, partitioned) before
// then.
func NewReader[V any](src dataset.Source, name string) *Reader[V] {
	return &Reader[V]{src: src, name: name}
}

func (r *Reader[V]) Initialize(slot int, begin, end int64) error {
	r.slot = slot
	raw, err := r.src.ReadColumn(slot, r.name)
	if err != nil {
		return errors.Wrapf(err, "reading column %q", r.name)
	}
	typed, ok := raw.(dataset.TypedColumnReader[V])
	if !ok {
		return errors.Errorf("column %q: reader does not produce the requested type", r.name)
	}
	r.rdr = typed
	return nil
}

func (r *Reader[V]) Execute(slot int, entry int64) error {
	r.entr = entry
	return nil
}

func (r *Reader[V]) Value() V { return r.rdr.Value(r.slot, r.entr) }

// Fixed wraps a constant value, identical across the whole run. It is
// the "fixed" column variant of spec.md §3.
type Fixed[V any] struct {
	action.Base
	v V
}

// NewFixed returns a Fixed column holding v.
func NewFixed[V any](v V) *Fixed[V] { return &Fixed[V]{v: v} }

func (f *Fixed[V]) Value() V { return f.v }

// Definition is the interface a user-defined stateful or stateless
// column computation implements (spec.md §3's "definition" variant).
// Implementations embed action.Base (or implement the lifecycle
// themselves to advance internal state) and read their wired inputs
// through Observables captured at construction time. A pure "equation"
// column (spec.md §3) is simply a Definition whose Execute is a no-op.
type Definition[R any] interface {
	action.Action
	// Evaluate returns the definition's current value. Called lazily,
	// at most once per entry per slot, by the Calculated wrapper that
	// owns this Definition.
	Evaluate() R
}

// Calculated memoizes a Definition: it forwards the Action lifecycle
// to the wrapped Definition, but only ever calls Evaluate at most once
// per entry per slot, on the first Value() read after Execute, via the
// dirty-flag contract of spec.md §4.2. Both the "equation" and
// "definition" column variants of spec.md §3 are Calculated wrapping a
// Definition -- an equation's Definition is the equationFn adapter
// below, a user definition's Definition is whatever the caller wrote.
type Calculated[V any] struct {
	def   Definition[V]
	dirty bool
	value V
}

// NewCalculated wraps a Definition in the memoizing Calculated column.
func NewCalculated[V any](def Definition[V]) *Calculated[V] {
	return &Calculated[V]{def: def}
}

func (c *Calculated[V]) Vary(name string) { c.def.Vary(name) }

func (c *Calculated[V]) Initialize(slot int, begin, end int64) error {
	return c.def.Initialize(slot, begin, end)
}

func (c *Calculated[V]) Execute(slot int, entry int64) error {
	c.dirty = true
	return c.def.Execute(slot, entry)
}

func (c *Calculated[V]) Finalize(slot int) error { return c.def.Finalize(slot) }

func (c *Calculated[V]) Value() V {
	if c.dirty {
		c.value = c.def.Evaluate()
		c.dirty = false
	}
	return c.value
}

// equationFn adapts a plain pure function to Definition, for the
// Equation1..4 helpers below.
type equationFn[V any] struct {
	action.Base
	fn func() V
}

func (e equationFn[V]) Evaluate() V { return e.fn() }

// Conversion is a narrowing/widening adapter view of another column: it
// satisfies Column[To] (and is observed through Observe like any other
// column) without owning the source column's lifecycle (spec.md §4.1's
// "conversion view" adapter).
type Conversion[To, From any] struct {
	action.Base
	src  Column[From]
	conv func(From) To
}

// NewConversion returns a Column[To] that reads src and applies conv.
func NewConversion[To, From any](src Column[From], conv func(From) To) *Conversion[To, From] {
	return &Conversion[To, From]{src: src, conv: conv}
}

func (c *Conversion[To, From]) Value() To { return c.conv(c.src.Value()) }

// Evaluator is the "todo" helper for a column definition: it holds the
// user's constructor plus whatever inputs are later wired by Evaluate.
// D is created fresh per slot (so each slot gets its own stateful
// instance) by calling newD with that slot's input Observables.
type Evaluator[D Definition[R], R any] struct {
	newD func(inputs []Observable) D
}

// NewEvaluator builds an Evaluator around a per-slot constructor.
func NewEvaluator[D Definition[R], R any](newD func(inputs []Observable) D) *Evaluator[D, R] {
	return &Evaluator[D, R]{newD: newD}
}

// Evaluate materializes one slot's replica of the definition, wiring
// inputs and wrapping it in a Calculated[R] so the definition's
// Evaluate is only ever called once per entry. The returned Column is
// the single action the caller needs to register: Calculated already
// forwards the whole lifecycle to the wrapped Definition.
func (e *Evaluator[D, R]) Evaluate(inputs ...Observable) Column[R] {
	d := e.newD(inputs)
	return NewCalculated[R](d)
}

// Equation turns a pure function into a column evaluator. Because Go
// has no variadic generics, a fixed small set of arity-specialized
// constructors is provided (spec.md §9's recommended design) rather
// than one variadic entry point; see dataflow.Expression1..4 for the
// front-end-facing wrappers built on top of these.
func Equation1[A, R any](fn func(A) R, a Observable) *Calculated[R] {
	return NewCalculated[R](equationFn[R]{fn: func() R { return fn(a.Get().(A)) }})
}

func Equation2[A, B, R any](fn func(A, B) R, a, b Observable) *Calculated[R] {
	return NewCalculated[R](equationFn[R]{fn: func() R { return fn(a.Get().(A), b.Get().(B)) }})
}

func Equation3[A, B, C, R any](fn func(A, B, C) R, a, b, c Observable) *Calculated[R] {
	return NewCalculated[R](equationFn[R]{fn: func() R { return fn(a.Get().(A), b.Get().(B), c.Get().(C)) }})
}

func Equation4[A, B, C, D, R any](fn func(A, B, C, D) R, a, b, c, d Observable) *Calculated[R] {
	return NewCalculated[R](equationFn[R]{fn: func() R { return fn(a.Get().(A), b.Get().(B), c.Get().(C), d.Get().(D)) }})
}

// EquationN is the variable-arity analogue of Equation1..4, used when
// the caller doesn't know the input arity statically (e.g. a cutflow
// Applicator, whose predicate closes over however many columns the
// caller wired). vals passed to fn are boxed in input order.
func EquationN[R any](fn func(vals []any) R, inputs []Observable) *Calculated[R] {
	return NewCalculated[R](equationFn[R]{fn: func() R {
		vals := make([]any, len(inputs))
		for i, o := range inputs {
			vals[i] = o.Get()
		}
		return fn(vals)
	}})
}
