package queryset

import (
	"math"
	"testing"

	"github.com/queryosity-go/queryosity/internal/percentile"
)

func TestSumWAccumulatesCount(t *testing.T) {
	s := NewSumW()
	s.Count(1)
	s.Count(2)
	s.Count(3)
	if s.Result() != 6 {
		t.Fatalf("Result() = %v, want 6", s.Result())
	}
}

func TestSumWMergesInSlotOrder(t *testing.T) {
	s := NewSumW()
	got := s.Merge([]float64{1, 2, 3})
	if got != 6 {
		t.Fatalf("Merge() = %v, want 6", got)
	}
}

func TestMeanWeightsByFillWeight(t *testing.T) {
	m := NewMean()
	m.Fill([]any{10.0}, 1)
	m.Fill([]any{20.0}, 3)
	r := m.Result()
	want := (10.0*1 + 20.0*3) / 4
	if math.Abs(r.Value()-want) > 1e-9 {
		t.Fatalf("Value() = %v, want %v", r.Value(), want)
	}
}

func TestMeanResultValueZeroWeight(t *testing.T) {
	var r MeanResult
	if r.Value() != 0 {
		t.Fatalf("Value() on zero weight = %v, want 0", r.Value())
	}
}

func TestMeanMergeSumsBothAccumulators(t *testing.T) {
	m := NewMean()
	merged := m.Merge([]MeanResult{{SumW: 1, SumWV: 10}, {SumW: 3, SumWV: 60}})
	if merged.SumW != 4 || merged.SumWV != 70 {
		t.Fatalf("merged = %+v, want SumW=4 SumWV=70", merged)
	}
}

func TestHistogramBinsByExactKey(t *testing.T) {
	h := NewHistogram[string]()
	h.Fill([]any{"a"}, 1)
	h.Fill([]any{"a"}, 2)
	h.Fill([]any{"b"}, 5)
	r := h.Result()
	if r["a"] != 3 {
		t.Fatalf(`bin "a" = %v, want 3`, r["a"])
	}
	if r["b"] != 5 {
		t.Fatalf(`bin "b" = %v, want 5`, r["b"])
	}
}

func TestHistogramMergeSumsMatchingBins(t *testing.T) {
	h := NewHistogram[string]()
	merged := h.Merge([]map[string]float64{
		{"a": 1, "b": 2},
		{"a": 3},
	})
	if merged["a"] != 4 || merged["b"] != 2 {
		t.Fatalf("merged = %v, want a=4 b=2", merged)
	}
}

func TestHistogramSortedIsDeterministic(t *testing.T) {
	h := NewHistogram[string]()
	h.Fill([]any{"z"}, 1)
	h.Fill([]any{"a"}, 1)
	h.Fill([]any{"m"}, 1)
	first := h.Sorted()
	second := h.Sorted()
	if len(first) != 3 || len(second) != 3 {
		t.Fatal("expected 3 bins")
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Fatalf("Sorted() order not stable across calls: %v vs %v", first, second)
		}
	}
}

func TestSeriesFillAppendsInCallOrder(t *testing.T) {
	s := NewSeries[float64]()
	s.Fill([]any{1.0}, 1)
	s.Fill([]any{2.0}, 1)
	s.Fill([]any{3.0}, 1)
	got := s.Result()
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSeriesConcatenatesInSlotOrder(t *testing.T) {
	s := NewSeries[int]()
	merged := s.Merge([][]int{{1, 2}, {3}})
	want := []int{1, 2, 3}
	if len(merged) != len(want) {
		t.Fatalf("got %v, want %v", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Fatalf("got %v, want %v", merged, want)
		}
	}
}

func TestQuantileResultReflectsFilledValues(t *testing.T) {
	q := NewQuantile(100)
	for _, v := range []any{1.0, 2.0, 3.0, 4.0, 5.0} {
		q.Fill([]any{v}, 1)
	}
	d := q.Result()
	if got := d.Percentile(0.5); got < 2 || got > 4 {
		t.Fatalf("median estimate = %v, want roughly 3", got)
	}
}

func TestQuantileMergeCombinesDigests(t *testing.T) {
	a := NewQuantile(100)
	a.Fill([]any{1.0}, 1)
	a.Fill([]any{2.0}, 1)

	b := NewQuantile(100)
	b.Fill([]any{100.0}, 1)
	b.Fill([]any{101.0}, 1)

	merged := a.Merge([]*percentile.TDigest{a.Result(), b.Result()})
	if got := merged.Percentile(0.99); got < 90 {
		t.Fatalf("merged high quantile = %v, want it to reflect b's large values", got)
	}
}
