package dataflow

import (
	"github.com/queryosity-go/queryosity/column"
	"github.com/queryosity-go/queryosity/selection"
)

// Sel is a cutflow node handle: one *selection.Selection replica per
// slot, named and typed (Cut or Weight) the same way across every slot.
type Sel struct {
	df       *Dataflow
	name     string
	kind     selection.Kind
	replicas []*selection.Selection
}

// Name returns the selection's registration name.
func (s *Sel) Name() string { return s.name }

// Kind returns Cut or Weight.
func (s *Sel) Kind() selection.Kind { return s.kind }

// ApplyCut books a cut selection from an existing boolean column
// (spec.md §4.3's apply<cut>(parent, decision)). parent may be nil for
// a root-level selection.
func ApplyCut(df *Dataflow, name string, parent *Sel, decision *Lazy[bool]) *Sel {
	reps := make([]*selection.Selection, df.nslots)
	for s := 0; s < df.nslots; s++ {
		reps[s] = selection.ApplyCut(name, parentReplica(parent, s), decision.replicas[s])
	}
	return &Sel{df: df, name: name, kind: selection.Cut, replicas: reps}
}

// ApplyWeight books a weight selection from an existing real-valued
// column (spec.md §4.3's apply<weight>(parent, decision)).
func ApplyWeight(df *Dataflow, name string, parent *Sel, decision *Lazy[float64]) *Sel {
	reps := make([]*selection.Selection, df.nslots)
	for s := 0; s < df.nslots; s++ {
		reps[s] = selection.ApplyWeight(name, parentReplica(parent, s), decision.replicas[s])
	}
	return &Sel{df: df, name: name, kind: selection.Weight, replicas: reps}
}

// SelectCut books a cut selection whose decision is computed from a
// variable-length input list in one step (spec.md §4.3's
// select<cut>(parent, fn, inputs...)).
func SelectCut(df *Dataflow, name string, parent *Sel, fn func(vals []any) bool, inputs ...AnyLazy) *Sel {
	reps := make([]*selection.Selection, df.nslots)
	for s := 0; s < df.nslots; s++ {
		obs := observablesAt(inputs, s)
		decision := column.EquationN[bool](fn, obs)
		df.register(s, decision)
		reps[s] = selection.ApplyCut(name, parentReplica(parent, s), decision)
	}
	return &Sel{df: df, name: name, kind: selection.Cut, replicas: reps}
}

// SelectWeight is the weight analogue of SelectCut.
func SelectWeight(df *Dataflow, name string, parent *Sel, fn func(vals []any) float64, inputs ...AnyLazy) *Sel {
	reps := make([]*selection.Selection, df.nslots)
	for s := 0; s < df.nslots; s++ {
		obs := observablesAt(inputs, s)
		decision := column.EquationN[float64](fn, obs)
		df.register(s, decision)
		reps[s] = selection.ApplyWeight(name, parentReplica(parent, s), decision)
	}
	return &Sel{df: df, name: name, kind: selection.Weight, replicas: reps}
}

func parentReplica(parent *Sel, slot int) *selection.Selection {
	if parent == nil {
		return nil
	}
	return parent.replicas[slot]
}

func observablesAt(inputs []AnyLazy, slot int) []column.Observable {
	obs := make([]column.Observable, len(inputs))
	for i, in := range inputs {
		obs[i] = in.observableAt(slot)
	}
	return obs
}
