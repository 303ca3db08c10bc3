// Package selection owns the cutflow: cut/weight decision nodes
// composed into a DAG rooted at no-parent (spec.md §3, §4.3).
package selection

import (
	"github.com/queryosity-go/queryosity/action"
	"github.com/queryosity-go/queryosity/column"
)

// Kind distinguishes a boolean cut from a real-valued weight.
type Kind int

const (
	Cut Kind = iota
	Weight
)

func (k Kind) String() string {
	if k == Weight {
		return "weight"
	}
	return "cut"
}

// Selection is a column-backed decision in the cutflow tree. Execute
// is a no-op: Passed and Weight are derived on demand from the
// decision column (itself already memoized, so repeated Passed/Weight
// calls within the same entry cost nothing extra) and from the
// parent's own Passed/Weight.
//
// A nil parent is treated as the virtual root {passed: true, weight: 1}
// so the cut/weight rules of spec.md §3 apply uniformly whether or not
// a selection has a parent.
type Selection struct {
	action.Base
	name     string
	kind     Kind
	parent   *Selection
	decision column.Column[float64]
}

// New wraps decision (already converted to a real-valued decision
// column -- see ApplyCut/ApplyWeight) as a selection of the given kind
// under parent, which may be nil.
func New(name string, kind Kind, parent *Selection, decision column.Column[float64]) *Selection {
	return &Selection{name: name, kind: kind, parent: parent, decision: decision}
}

// Name returns the selection's registration name.
func (s *Selection) Name() string { return s.name }

// Kind returns Cut or Weight.
func (s *Selection) Kind() Kind { return s.kind }

// Parent returns the selection's parent, or nil at the cutflow root.
func (s *Selection) Parent() *Selection { return s.parent }

func (s *Selection) parentPassedWeight() (bool, float64) {
	if s.parent == nil {
		return true, 1
	}
	return s.parent.Passed(), s.parent.Weight()
}

// Passed reports whether this selection's decision, combined with its
// ancestry, passes. For a cut: parent.Passed() && decision != 0. For a
// weight: parent.Passed() alone (a weight never filters).
func (s *Selection) Passed() bool {
	pp, _ := s.parentPassedWeight()
	if !pp {
		return false
	}
	if s.kind == Cut {
		return s.decision.Value() != 0
	}
	return true
}

// Weight returns the accumulated weight along this selection's
// ancestry: a cut passes its parent's weight through unchanged, a
// weight multiplies it by its own decision.
func (s *Selection) Weight() float64 {
	_, pw := s.parentPassedWeight()
	if s.kind == Cut {
		return pw
	}
	return pw * s.decision.Value()
}

// ApplyCut wraps an existing boolean column as a cut selection under
// parent (spec.md §4.3's apply<cut>(parent, decisionColumn)).
func ApplyCut(name string, parent *Selection, decision column.Column[bool]) *Selection {
	conv := column.NewConversion[float64, bool](decision, func(v bool) float64 {
		if v {
			return 1
		}
		return 0
	})
	return New(name, Cut, parent, conv)
}

// ApplyWeight wraps an existing real-valued column as a weight
// selection under parent.
func ApplyWeight(name string, parent *Selection, decision column.Column[float64]) *Selection {
	return New(name, Weight, parent, decision)
}

// Applicator is the "todo" helper for a selection: it builds both the
// decision column and the selection atomically from its wired inputs
// (spec.md §4.3's select<cut|weight>(parent, fn)).
type Applicator struct {
	name   string
	kind   Kind
	parent *Selection
	build  func(inputs []column.Observable) (column.Column[float64], action.Action)
}

// NewCutApplicator builds an Applicator that turns fn's boolean result
// into a 0/1 decision column.
func NewCutApplicator(name string, parent *Selection, fn func(inputs []column.Observable) column.Column[bool]) *Applicator {
	return &Applicator{
		name:   name,
		kind:   Cut,
		parent: parent,
		build: func(inputs []column.Observable) (column.Column[float64], action.Action) {
			b := fn(inputs)
			return column.NewConversion[float64, bool](b, func(v bool) float64 {
				if v {
					return 1
				}
				return 0
			}), b
		},
	}
}

// NewWeightApplicator builds an Applicator around a real-valued
// decision column constructor.
func NewWeightApplicator(name string, parent *Selection, fn func(inputs []column.Observable) column.Column[float64]) *Applicator {
	return &Applicator{name: name, kind: Weight, parent: parent, build: func(inputs []column.Observable) (column.Column[float64], action.Action) {
		c := fn(inputs)
		return c, c
	}}
}

// Apply materializes one slot's replica of the selection. The returned
// action.Action is the decision column underlying the selection (the
// thing that actually needs Initialize/Execute/Finalize; for a cut,
// the boolean column beneath its 0/1 conversion); Selection
// itself is a pure derivation with a no-op lifecycle, but the caller
// must still register it in the slot's action list in dependency order
// (after its decision column and parent) so Vary propagates correctly
// for varied selections.
func (a *Applicator) Apply(inputs ...column.Observable) (*Selection, action.Action) {
	decision, act := a.build(inputs)
	return New(a.name, a.kind, a.parent, decision), act
}
