package varied

import (
	"reflect"
	"testing"
)

func TestVaryAndVariation(t *testing.T) {
	v := Vary(1, map[string]int{"up": 2, "down": 0})

	if got := v.Variation("up"); got != 2 {
		t.Fatalf("Variation(up) = %d, want 2", got)
	}
	if got := v.Variation("missing"); got != 1 {
		t.Fatalf("Variation(missing) should fall back to nominal, got %d", got)
	}
	if _, err := v.At("missing"); err == nil {
		t.Fatal("At(missing) should error, not fall back")
	}
	if got := reflect.DeepEqual(v.Names(), []string{"down", "up"}); !got {
		t.Fatalf("Names() = %v, want sorted [down up]", v.Names())
	}
}

func TestMapUnary(t *testing.T) {
	v := Vary(10, map[string]int{"scale": 20})
	doubled := MapUnary(v, func(x int) int { return x * 2 })

	if doubled.Nominal != 20 {
		t.Fatalf("nominal = %d, want 20", doubled.Nominal)
	}
	if got := doubled.Variation("scale"); got != 40 {
		t.Fatalf("scale variation = %d, want 40", got)
	}
}

func TestMapBinaryUnionsNamesAndFallsBackToNominal(t *testing.T) {
	a := Vary(1, map[string]int{"a_only": 5})
	b := Vary(100, map[string]int{"b_only": 200})

	sum := MapBinary(a, b, func(x, y int) int { return x + y })

	names := sum.Names()
	want := []string{"a_only", "b_only"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	// a_only: a's variant (5) + b's nominal (100) = 105
	if got := sum.Variation("a_only"); got != 105 {
		t.Fatalf("a_only = %d, want 105", got)
	}
	// b_only: a's nominal (1) + b's variant (200) = 201
	if got := sum.Variation("b_only"); got != 201 {
		t.Fatalf("b_only = %d, want 201", got)
	}
	if sum.Nominal != 101 {
		t.Fatalf("nominal = %d, want 101", sum.Nominal)
	}
}

func TestOfHasNoVariations(t *testing.T) {
	v := Of("x")
	if len(v.Names()) != 0 {
		t.Fatalf("Of should have no variation names, got %v", v.Names())
	}
	if v.HasVariation("anything") {
		t.Fatal("Of should report no variations registered")
	}
}
