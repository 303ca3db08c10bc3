package column

import (
	"testing"

	"github.com/queryosity-go/queryosity/action"
)

func TestFixedIsConstant(t *testing.T) {
	c := NewFixed[int](7)
	if c.Value() != 7 {
		t.Fatalf("Value() = %d, want 7", c.Value())
	}
	if err := c.Execute(0, 100); err != nil {
		t.Fatal(err)
	}
	if c.Value() != 7 {
		t.Fatal("Fixed must not change across Execute calls")
	}
}

func TestConversionNarrowsValue(t *testing.T) {
	src := NewFixed[int](41)
	conv := NewConversion[float64, int](src, func(v int) float64 { return float64(v) + 1 })
	if conv.Value() != 42 {
		t.Fatalf("Value() = %v, want 42", conv.Value())
	}
}

// countingDef counts how many times Evaluate is called, to verify
// Calculated's memoization invariant: Evaluate runs at most once per
// Execute, however many times Value is read afterward.
type countingDef struct {
	action.Base
	evals int
	v     int
}

func (d *countingDef) Evaluate() int {
	d.evals++
	return d.v
}

func TestCalculatedMemoizesPerEntry(t *testing.T) {
	def := &countingDef{v: 5}
	calc := NewCalculated[int](def)

	if err := calc.Execute(0, 0); err != nil {
		t.Fatal(err)
	}
	_ = calc.Value()
	_ = calc.Value()
	_ = calc.Value()
	if def.evals != 1 {
		t.Fatalf("Evaluate called %d times within one entry, want 1", def.evals)
	}

	if err := calc.Execute(0, 1); err != nil {
		t.Fatal(err)
	}
	_ = calc.Value()
	if def.evals != 2 {
		t.Fatalf("Evaluate called %d times across two entries, want 2", def.evals)
	}
}

func TestEquation1(t *testing.T) {
	a := NewFixed[int](3)
	calc := Equation1(func(v int) int { return v * v }, Observe[int](a))
	if err := calc.Execute(0, 0); err != nil {
		t.Fatal(err)
	}
	if calc.Value() != 9 {
		t.Fatalf("Value() = %d, want 9", calc.Value())
	}
}

func TestEvaluatorWiresDefinitionInputs(t *testing.T) {
	a := NewFixed[int](2)
	b := NewFixed[int](3)
	ev := NewEvaluator[*sumDef, int](func(inputs []Observable) *sumDef {
		return &sumDef{inputs: inputs}
	})
	col := ev.Evaluate(Observe[int](a), Observe[int](b))
	if err := col.Execute(0, 0); err != nil {
		t.Fatal(err)
	}
	if col.Value() != 5 {
		t.Fatalf("Value() = %d, want 5", col.Value())
	}
}

type sumDef struct {
	action.Base
	inputs []Observable
}

func (d *sumDef) Evaluate() int {
	total := 0
	for _, in := range d.inputs {
		total += in.Get().(int)
	}
	return total
}
