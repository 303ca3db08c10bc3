package selection

import (
	"testing"

	"github.com/queryosity-go/queryosity/column"
)

func TestRootCutPassesWithVirtualRoot(t *testing.T) {
	decision := column.NewFixed[bool](true)
	sel := ApplyCut("root", nil, decision)

	if !sel.Passed() {
		t.Fatal("a true root cut should pass")
	}
	if sel.Weight() != 1 {
		t.Fatalf("root weight = %v, want 1", sel.Weight())
	}
}

func TestCutFailsPropagatesToChildren(t *testing.T) {
	root := ApplyCut("root", nil, column.NewFixed[bool](false))
	child := ApplyCut("child", root, column.NewFixed[bool](true))

	if root.Passed() {
		t.Fatal("root should not pass")
	}
	if child.Passed() {
		t.Fatal("a child of a failing cut must not pass even if its own decision is true")
	}
}

func TestWeightNeverFilters(t *testing.T) {
	root := ApplyCut("root", nil, column.NewFixed[bool](true))
	w := ApplyWeight("w", root, column.NewFixed[float64](0))

	if !w.Passed() {
		t.Fatal("a weight selection must pass whenever its parent passes, regardless of its own value")
	}
	if w.Weight() != 0 {
		t.Fatalf("weight = %v, want 0", w.Weight())
	}
}

func TestWeightAccumulatesAlongAncestry(t *testing.T) {
	root := ApplyWeight("root", nil, column.NewFixed[float64](2))
	child := ApplyWeight("child", root, column.NewFixed[float64](3))

	if got := child.Weight(); got != 6 {
		t.Fatalf("accumulated weight = %v, want 6", got)
	}
}

func TestApplicatorBuildsDecisionFromInputs(t *testing.T) {
	a := column.NewFixed[float64](5)
	app := NewCutApplicator("gt3", nil, func(inputs []column.Observable) column.Column[bool] {
		return column.Equation1(func(v float64) bool { return v > 3 }, inputs[0])
	})
	sel, decisionAction := app.Apply(column.Observe[float64](a))
	if decisionAction == nil {
		t.Fatal("Apply should return the decision action to register")
	}
	// Calculated columns only evaluate lazily after Execute marks them
	// dirty; Applicator.Apply wires the decision but doesn't run it.
	if err := decisionAction.Execute(0, 0); err != nil {
		t.Fatal(err)
	}
	if !sel.Passed() {
		t.Fatal("5 > 3 should pass")
	}
}
