package dataflow

import (
	"github.com/queryosity-go/queryosity/query"
	"github.com/queryosity-go/queryosity/varied"
)

// VaryColumn wraps a nominal column handle and its named alternates
// into a varied.Varied (spec.md §4.8's vary(column, {name -> alternate,
// ...})). Each alternate is itself a fully built *Lazy[V], the product
// of its own ReadColumn/Expression/Define call -- variation in this
// implementation is "build the whole alternate sub-graph", not
// "mutate the nominal instance in place" (see DESIGN.md).
func VaryColumn[V any](nominal *Lazy[V], alternates map[string]*Lazy[V]) *varied.Varied[*Lazy[V]] {
	return varied.Vary(nominal, alternates)
}

// VarySel is the selection analogue of VaryColumn.
func VarySel(nominal *Sel, alternates map[string]*Sel) *varied.Varied[*Sel] {
	return varied.Vary(nominal, alternates)
}

// VariedExpression1 propagates Expression1 across every variation name
// of a: building a fully independent *Lazy[R] per name, with the union
// rule and nominal fallback of spec.md §4.8 handled by varied.MapUnary.
func VariedExpression1[A, R any](df *Dataflow, fn func(A) R, a *varied.Varied[*Lazy[A]]) *varied.Varied[*Lazy[R]] {
	return varied.MapUnary(a, func(l *Lazy[A]) *Lazy[R] { return Expression1(df, fn, l) })
}

// VariedExpression2 is the two-operand analogue of VariedExpression1.
func VariedExpression2[A, B, R any](df *Dataflow, fn func(A, B) R, a *varied.Varied[*Lazy[A]], b *varied.Varied[*Lazy[B]]) *varied.Varied[*Lazy[R]] {
	return varied.MapBinary(a, b, func(la *Lazy[A], lb *Lazy[B]) *Lazy[R] { return Expression2(df, fn, la, lb) })
}

// VariedApplyCut propagates ApplyCut across the union of parent's and
// decision's variation names.
func VariedApplyCut(df *Dataflow, name string, parent *varied.Varied[*Sel], decision *varied.Varied[*Lazy[bool]]) *varied.Varied[*Sel] {
	return varied.MapBinary(parent, decision, func(p *Sel, d *Lazy[bool]) *Sel { return ApplyCut(df, name, p, d) })
}

// VariedApplyWeight is the weight analogue of VariedApplyCut.
func VariedApplyWeight(df *Dataflow, name string, parent *varied.Varied[*Sel], decision *varied.Varied[*Lazy[float64]]) *varied.Varied[*Sel] {
	return varied.MapBinary(parent, decision, func(p *Sel, d *Lazy[float64]) *Sel { return ApplyWeight(df, name, p, d) })
}

// VariedBook books the same QBooker against every variation name of
// sel, producing one Output handle per name (spec.md §4.8's
// "constructing a ... booker from a varied column yields a varied of
// the same shape").
func VariedBook[Q query.Query[R], R any](b *QBooker[Q, R], sel *varied.Varied[*Sel]) *varied.Varied[*Output[Q, R]] {
	return varied.MapUnary(sel, func(s *Sel) *Output[Q, R] { return b.Book(s) })
}

// VariedResult forces every variation's Output.Result in turn (the
// nominal and each alternate were booked against independent Sel
// replicas, so each has its own analyze-triggering Result call) and
// returns them collected into a Varied[R].
func VariedResult[Q query.Query[R], R any](o *varied.Varied[*Output[Q, R]]) *varied.Varied[R] {
	return varied.MapUnary(o, func(out *Output[Q, R]) R { return out.Result() })
}
