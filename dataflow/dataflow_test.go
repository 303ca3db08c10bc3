package dataflow_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/queryosity-go/queryosity/dataflow"
	"github.com/queryosity-go/queryosity/dataset/memtable"
	"github.com/queryosity-go/queryosity/queryset"
	"github.com/queryosity-go/queryosity/varied"
)

func newTable() *memtable.Table {
	t := memtable.New(6)
	memtable.AddColumn(t, "category", []string{"a", "b", "a", "b", "a", "c"})
	memtable.AddColumn(t, "x", []float64{1, 2, 3, 4, 5, 6})
	memtable.AddColumn(t, "w", []float64{1, 1, 2, 2, 1, 1})
	return t
}

// newWideTable is large enough (relative to memtable's default
// partition chunk size) that every concurrency level exercised by
// TestMultithreadMatchesSingleThreadedBaseline genuinely splits into
// more partitions than slots, driving processor.Run's queue-dispatch
// path rather than handing each slot exactly one partition.
func newWideTable() *memtable.Table {
	n := int64(120)
	categories := make([]string, n)
	xs := make([]float64, n)
	ws := make([]float64, n)
	labels := []string{"a", "b", "c", "d"}
	for i := int64(0); i < n; i++ {
		categories[i] = labels[i%int64(len(labels))]
		xs[i] = float64(i + 1)
		ws[i] = float64(1 + i%3)
	}
	t := memtable.New(n)
	memtable.AddColumn(t, "category", categories)
	memtable.AddColumn(t, "x", xs)
	memtable.AddColumn(t, "w", ws)
	return t
}

// yieldByCategory books the same weighted-histogram-by-category graph
// TestYieldByCategory exercises single-threaded, against whatever
// dataflow is given, so TestMultithreadMatchesSingleThreadedBaseline
// can run it at several concurrency levels and compare.
func yieldByCategory(df *dataflow.Dataflow) map[string]float64 {
	category := dataflow.ReadColumn[string](df, "category")
	w := dataflow.ReadColumn[float64](df, "w")
	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)
	weighted := dataflow.ApplyWeight(df, "w", root, w)

	hist := dataflow.Make[*queryset.Histogram[string], map[string]float64](df, queryset.NewHistogram[string]).
		Fill(category).
		Book(weighted)
	return hist.Result()
}

// spec.md §8.3 / §1: a multithreaded run must merge to the same result
// as a single-threaded run of the same dataset. Each concurrency level
// is checked against memtable's default partitioning, which (per
// newWideTable's sizing) hands out more partitions than slots at every
// level below, so this genuinely drives the cooperative queue-dispatch
// path, not just one partition per slot.
func TestMultithreadMatchesSingleThreadedBaseline(t *testing.T) {
	baseDf, err := dataflow.New(newWideTable(), dataflow.MultithreadDisable())
	if err != nil {
		t.Fatal(err)
	}
	want := yieldByCategory(baseDf)

	for _, n := range []int{2, 3, 4} {
		n := n
		t.Run(fmt.Sprintf("slots=%d", n), func(t *testing.T) {
			df, err := dataflow.New(newWideTable(), dataflow.MultithreadEnable(n))
			if err != nil {
				t.Fatal(err)
			}
			if got := df.Slots(); got != n {
				t.Fatalf("Slots() = %d, want %d", got, n)
			}
			got := yieldByCategory(df)
			if len(got) != len(want) {
				t.Fatalf("slots=%d: got %v, want %v", n, got, want)
			}
			for k, v := range want {
				if got[k] != v {
					t.Fatalf("slots=%d: category %q = %v, want %v (full: got %v want %v)", n, k, got[k], v, got, want)
				}
			}
		})
	}
}

// spec.md §8.1: Yield by category.
func TestYieldByCategory(t *testing.T) {
	src := newTable()
	df, err := dataflow.New(src, dataflow.MultithreadDisable())
	if err != nil {
		t.Fatal(err)
	}
	category := dataflow.ReadColumn[string](df, "category")
	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)

	hist := dataflow.Make[*queryset.Histogram[string], map[string]float64](df, queryset.NewHistogram[string]).
		Fill(category).
		Book(root)

	result := hist.Result()
	want := map[string]float64{"a": 3, "b": 2, "c": 1}
	for k, v := range want {
		if result[k] != v {
			t.Fatalf("category %q = %v, want %v (full result %v)", k, result[k], v, result)
		}
	}
}

// spec.md §8.2: Weighted mean.
func TestWeightedMean(t *testing.T) {
	src := newTable()
	df, err := dataflow.New(src, dataflow.MultithreadDisable())
	if err != nil {
		t.Fatal(err)
	}
	x := dataflow.ReadColumn[float64](df, "x")
	w := dataflow.ReadColumn[float64](df, "w")
	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)
	weighted := dataflow.ApplyWeight(df, "w", root, w)

	mean := dataflow.Make[*queryset.Mean, queryset.MeanResult](df, queryset.NewMean).
		Fill(x).
		Book(weighted)

	r := mean.Result()
	wantSumW := 1.0 + 1 + 2 + 2 + 1 + 1
	wantSumWV := 1*1.0 + 2*1 + 3*2 + 4*2 + 5*1 + 6*1
	if r.SumW != wantSumW || r.SumWV != wantSumWV {
		t.Fatalf("got %+v, want sumW=%v sumWV=%v", r, wantSumW, wantSumWV)
	}
	if got, want := r.Value(), wantSumWV/wantSumW; math.Abs(got-want) > 1e-9 {
		t.Fatalf("Value() = %v, want %v", got, want)
	}
}

// spec.md §8.3: MT determinism -- a series query concatenates slot
// results in slot order; single-threaded, that's simply entry order.
func TestSeriesSingleThreadedPreservesOrder(t *testing.T) {
	src := newTable()
	df, err := dataflow.New(src, dataflow.MultithreadDisable())
	if err != nil {
		t.Fatal(err)
	}
	x := dataflow.ReadColumn[float64](df, "x")
	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)

	series := dataflow.Make[*queryset.Series[float64], []float64](df, queryset.NewSeries[float64]).
		Fill(x).
		Book(root)

	got := series.Result()
	want := []float64{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// spec.md §8.4: Variation propagation -- a varied column propagates
// through a histogram booking, carrying exactly the union of names and
// differing results per variation.
func TestVariationPropagation(t *testing.T) {
	src := newTable()
	df, err := dataflow.New(src, dataflow.MultithreadDisable())
	if err != nil {
		t.Fatal(err)
	}
	x := dataflow.ReadColumn[float64](df, "x")
	scaled := dataflow.Expression1(df, func(v float64) float64 { return v * 2 }, x)
	smeared := dataflow.Expression1(df, func(v float64) float64 { return v + 100 }, x)
	variedX := varied.Vary(x, map[string]*dataflow.Lazy[float64]{"scale": scaled, "smear": smeared})

	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)

	results := varied.MapUnary(variedX, func(xv *dataflow.Lazy[float64]) queryset.MeanResult {
		mean := dataflow.Make[*queryset.Mean, queryset.MeanResult](df, queryset.NewMean).
			Fill(xv).
			Book(root)
		return mean.Result()
	})

	names := results.Names()
	if len(names) != 2 || names[0] != "scale" || names[1] != "smear" {
		t.Fatalf("variation names = %v, want [scale smear]", names)
	}
	if results.Nominal.Value() == results.Variation("scale").Value() {
		t.Fatal("scale variation should differ from nominal")
	}
	if results.Variation("scale").Value() == results.Variation("smear").Value() {
		t.Fatal("scale and smear variations should differ from each other")
	}
}

// spec.md §8.5: Head cap -- total entries observed is min(n, total).
func TestHeadCap(t *testing.T) {
	src := newTable()
	df, err := dataflow.New(src, dataflow.MultithreadDisable(), dataflow.Head(4))
	if err != nil {
		t.Fatal(err)
	}
	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)
	sum := dataflow.Make[*queryset.SumW, float64](df, queryset.NewSumW).Book(root)

	if got := sum.Result(); got != 4 {
		t.Fatalf("sum of weight across capped run = %v, want 4", got)
	}
}

// spec.md §8.6: Lazy evaluation -- booking columns, selections, and a
// query performs no entry-level work by itself; only reading a result
// triggers a run, and reading it again is a cache hit returning the
// same value.
func TestLazyEvaluationDefersUntilRead(t *testing.T) {
	src := newTable()
	df, err := dataflow.New(src, dataflow.MultithreadDisable())
	if err != nil {
		t.Fatal(err)
	}
	x := dataflow.ReadColumn[float64](df, "x")
	calls := 0
	doubled := dataflow.Expression1(df, func(v float64) float64 { calls++; return v * 2 }, x)
	always := dataflow.Constant(df, true)
	root := dataflow.ApplyCut(df, "accept", nil, always)
	booker := dataflow.Make[*queryset.Series[float64], []float64](df, queryset.NewSeries[float64]).Fill(doubled)
	out := booker.Book(root)
	if calls != 0 {
		t.Fatalf("expression evaluated %d times before any Result() read, want 0", calls)
	}

	first := out.Result()
	afterFirst := calls
	if afterFirst == 0 {
		t.Fatal("expression never evaluated by the first Result() read")
	}
	second := out.Result()
	if calls != afterFirst {
		t.Fatalf("second Result() read re-ran the entry loop: %d evaluations, want %d", calls, afterFirst)
	}
	if len(first) != len(second) {
		t.Fatalf("repeated Result() reads should be stable, got %v then %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated Result() reads should be stable, got %v then %v", first, second)
		}
	}
	if first[0] != 2 {
		t.Fatalf("first entry doubled = %v, want 2", first[0])
	}
}
