// Package queryset is an external collaborator package (spec.md §6):
// concrete query.Query implementations the core engine never imports
// directly. Each is grounded on a recognizable aggregation shape rather
// than on any one teacher file -- they are new code wired to the
// teacher's existing stack (internal/percentile, dchest/siphash).
package queryset

import (
	"fmt"
	"math"
	"sort"

	"github.com/dchest/siphash"

	"github.com/queryosity-go/queryosity/action"
	"github.com/queryosity-go/queryosity/internal/percentile"
)

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		panic(fmt.Sprintf("queryset: value %v (%T) is not numeric", v, v))
	}
}

// SumW accumulates the plain sum of scaled selection weight, with no
// fill columns (spec.md §8.2's "Weighted mean" scenario's denominator).
type SumW struct {
	action.Base
	sum float64
}

// NewSumW returns a zeroed SumW accumulator.
func NewSumW() *SumW { return &SumW{} }

// Initialize resets the slot's accumulator to zero. A Node's query
// instance is shared across every run of its Dataflow (a later booking
// re-arms the whole graph, spec.md §4.7), so Initialize -- not just
// construction -- is what must zero per-run state.
func (s *SumW) Initialize(slot int, begin, end int64) error {
	s.sum = 0
	return nil
}

func (s *SumW) Count(w float64) { s.sum += w }

func (s *SumW) Result() float64 { return s.sum }

// Merge reduces slot results in slot order: slot 0 absorbs slot 1, then
// slot 2, and so on, so repeated runs over the same partitioning are
// bit-exact (spec.md §9's Merge associativity requirement, resolved
// for SumW via a fixed reduction order; see DESIGN.md).
func (s *SumW) Merge(results []float64) float64 {
	var total float64
	for _, r := range results {
		total += r
	}
	return total
}

// CounterResult is Counter's per-slot and merged accumulator state:
// the passing-entry count, the sum of scaled weight, and its error
// (spec.md §4.4's "yield" aggregation: entries, sum-of-weight,
// sqrt-of-sum-of-squared-weight).
type CounterResult struct {
	Entries uint64
	Value   float64
	Error   float64
}

// Counter is the selection-yield query (spec.md §6's `yield(sels...)`
// argument type): a non-fillable query counting passing entries and
// their scaled weight at one selection, with a weight error computed
// as the square root of the summed squared weight. Grounded on
// `_examples/original_source/include/queryosity/selection_yield.hpp`'s
// `counter`.
type Counter struct {
	action.Base
	entries uint64
	value   float64
	sqErr   float64
	err     float64
}

// NewCounter returns a zeroed Counter accumulator.
func NewCounter() *Counter { return &Counter{} }

// Initialize resets the slot's counters to zero; see SumW.Initialize.
func (c *Counter) Initialize(slot int, begin, end int64) error {
	c.entries = 0
	c.value = 0
	c.sqErr = 0
	c.err = 0
	return nil
}

func (c *Counter) Count(w float64) {
	c.entries++
	c.value += w
	c.sqErr += w * w
}

// Finalize takes the square root of the accumulated squared weight,
// the one per-slot close-over-state transform spec.md §4.4 calls out
// a query may need at teardown (the original's counter::finalize).
func (c *Counter) Finalize(slot int) error {
	c.err = math.Sqrt(c.sqErr)
	return nil
}

func (c *Counter) Result() CounterResult {
	return CounterResult{Entries: c.entries, Value: c.value, Error: c.err}
}

// Merge sums entries and value across slots, and combines each slot's
// already-finalized error in quadrature before taking the square root
// again, matching the original's counter::merge.
func (c *Counter) Merge(results []CounterResult) CounterResult {
	var sum CounterResult
	var sqErr float64
	for _, r := range results {
		sum.Entries += r.Entries
		sum.Value += r.Value
		sqErr += r.Error * r.Error
	}
	sum.Error = math.Sqrt(sqErr)
	return sum
}

// MeanResult is Mean's per-slot and merged accumulator state: the two
// running sums a weighted mean needs, kept separate until Value is
// asked for so Merge stays a pure elementwise sum.
type MeanResult struct {
	SumW  float64
	SumWV float64
}

// Value returns the weighted mean, or 0 if no weight has accumulated.
func (r MeanResult) Value() float64 {
	if r.SumW == 0 {
		return 0
	}
	return r.SumWV / r.SumW
}

// Mean is a fillable query computing the selection-weighted mean of
// its single fill column (spec.md §8.2).
type Mean struct {
	action.Base
	r MeanResult
}

// NewMean returns a zeroed Mean accumulator.
func NewMean() *Mean { return &Mean{} }

// Initialize resets the slot's running sums to zero; see
// SumW.Initialize.
func (m *Mean) Initialize(slot int, begin, end int64) error {
	m.r = MeanResult{}
	return nil
}

func (m *Mean) Count(w float64) {}

func (m *Mean) Fill(vals []any, w float64) {
	m.r.SumW += w
	m.r.SumWV += w * toFloat64(vals[0])
}

func (m *Mean) Result() MeanResult { return m.r }

func (m *Mean) Merge(results []MeanResult) MeanResult {
	var out MeanResult
	for _, r := range results {
		out.SumW += r.SumW
		out.SumWV += r.SumWV
	}
	return out
}

// Bin is one histogram bucket: the fill key and its accumulated scaled
// weight.
type Bin[K comparable] struct {
	Key  K
	SumW float64
}

// Histogram is a fillable query binning its single fill column's value
// by exact key equality (spec.md §4.4's fillable query, generalized
// over any comparable key type rather than a fixed numeric range, per
// SPEC_FULL.md's category-yield scenario).
type Histogram[K comparable] struct {
	action.Base
	bins map[K]float64
}

// NewHistogram returns an empty Histogram.
func NewHistogram[K comparable]() *Histogram[K] {
	return &Histogram[K]{bins: map[K]float64{}}
}

// Initialize resets the slot's bins to empty; see SumW.Initialize.
func (h *Histogram[K]) Initialize(slot int, begin, end int64) error {
	h.bins = map[K]float64{}
	return nil
}

func (h *Histogram[K]) Count(w float64) {}

func (h *Histogram[K]) Fill(vals []any, w float64) {
	k := vals[0].(K)
	h.bins[k] += w
}

func (h *Histogram[K]) Result() map[K]float64 {
	out := make(map[K]float64, len(h.bins))
	for k, v := range h.bins {
		out[k] = v
	}
	return out
}

func (h *Histogram[K]) Merge(results []map[K]float64) map[K]float64 {
	out := map[K]float64{}
	for _, r := range results {
		for k, v := range r {
			out[k] += v
		}
	}
	return out
}

// bucketHash gives every key a stable 64-bit order key, independent of
// Go's randomized map iteration and of whether K itself is ordered
// (string category labels, struct keys, etc). Grounded on the
// teacher's use of the same library to bucket row symbols in ion/zion.
func bucketHash(key any) uint64 {
	return siphash.Hash(0x0123456789abcdef, 0xfedcba9876543210, []byte(fmt.Sprint(key)))
}

// Sorted returns h's bins in a deterministic order (by bucketHash of
// the key), for reproducible report output regardless of K's
// orderability.
func (h *Histogram[K]) Sorted() []Bin[K] {
	bins := make([]Bin[K], 0, len(h.bins))
	for k, w := range h.bins {
		bins = append(bins, Bin[K]{Key: k, SumW: w})
	}
	sort.Slice(bins, func(i, j int) bool { return bucketHash(bins[i].Key) < bucketHash(bins[j].Key) })
	return bins
}

// Series captures every passing entry's single fill-column value in
// the order its slot saw them (spec.md §8.3's MT-determinism scenario:
// concatenating slot 0..N-1 in order reproduces the original order
// exactly when single-threaded, the original's column_series.hpp
// behavior).
type Series[V any] struct {
	action.Base
	vals []V
}

// NewSeries returns an empty Series.
func NewSeries[V any]() *Series[V] { return &Series[V]{} }

// Initialize resets the slot's captured values to empty; see
// SumW.Initialize.
func (s *Series[V]) Initialize(slot int, begin, end int64) error {
	s.vals = nil
	return nil
}

func (s *Series[V]) Count(w float64) {}

func (s *Series[V]) Fill(vals []any, w float64) {
	s.vals = append(s.vals, vals[0].(V))
}

func (s *Series[V]) Result() []V { return append([]V(nil), s.vals...) }

func (s *Series[V]) Merge(results [][]V) []V {
	var out []V
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// Quantile is a fillable query approximating percentiles of its single
// fill column via a t-digest (spec.md §9's Merge tolerance resolved as
// "approximate, not bit-exact" for this one query kind; see
// DESIGN.md). Every fill currently carries weight 1 in the digest: the
// kept percentile.TDigest only exposes an unweighted constructor, so a
// per-entry scaled weight isn't reflected in the centroid weights.
type Quantile struct {
	action.Base
	compression int
	values      []float32
}

// NewQuantile returns a Quantile with the given t-digest compression
// factor (passed straight through to percentile.NewTDigest/Merge).
func NewQuantile(compression int) *Quantile {
	return &Quantile{compression: compression}
}

// Initialize resets the slot's captured samples to empty; see
// SumW.Initialize.
func (q *Quantile) Initialize(slot int, begin, end int64) error {
	q.values = nil
	return nil
}

func (q *Quantile) Count(w float64) {}

func (q *Quantile) Fill(vals []any, w float64) {
	q.values = append(q.values, float32(toFloat64(vals[0])))
}

func (q *Quantile) Result() *percentile.TDigest {
	return percentile.NewTDigest(q.values, q.compression)
}

func (q *Quantile) Merge(results []*percentile.TDigest) *percentile.TDigest {
	out := results[0]
	for _, r := range results[1:] {
		out.Merge(r, q.compression)
	}
	return out
}
