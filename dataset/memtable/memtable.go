// Package memtable is a minimal in-memory dataset.Source, columns held
// as plain Go slices indexed directly by global entry number. It exists
// for tests: spec.md §8's scenarios all fit comfortably in memory, and
// a slice-backed Source needs no cursor state at all (Value indexes
// straight into the slice, ignoring slot).
package memtable

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/queryosity-go/queryosity/dataset"
)

var seq int64

// typedColumn implements dataset.TypedColumnReader[V] directly over a
// slice; slot is ignored since every slot shares the same backing
// array read-only.
type typedColumn[V any] struct {
	vals []V
}

func (c *typedColumn[V]) Value(slot int, entry int64) V { return c.vals[entry] }

// defaultChunkSize bounds how many entries go in one partition by
// default: small enough that a Table with more than a few entries per
// slot genuinely produces more partitions than slots, so
// processor.Run's queue-dispatch path (a slot pulls the next partition
// only after finishing the last) is actually exercised rather than
// every slot getting exactly one partition.
const defaultChunkSize = 2

// Table is a fixed-row-count, column-oriented in-memory dataset.
type Table struct {
	n         int64
	cols      map[string]any
	slots     int
	chunkSize int64
	id        int64
}

// SetChunkSize overrides the target entries-per-partition used by
// Partition (default defaultChunkSize). A smaller size produces more,
// smaller partitions relative to the slot count.
func SetChunkSize(t *Table, n int64) { t.chunkSize = n }

// New returns an empty Table with n entries; columns are added with
// AddColumn before the table is used. Each Table gets its own identity
// (see Identity) so building two independent fixtures of the same
// shape never trips dataset.Fingerprint's double-load detection.
func New(n int64) *Table {
	return &Table{n: n, cols: map[string]any{}, id: atomic.AddInt64(&seq, 1)}
}

// AddColumn registers a column of exactly t's entry count. It panics on
// a length mismatch: this is a test-fixture construction error, not a
// runtime condition a caller should recover from.
func AddColumn[V any](t *Table, name string, vals []V) {
	if int64(len(vals)) != t.n {
		panic(fmt.Sprintf("memtable: column %q has %d values, table has %d entries", name, len(vals), t.n))
	}
	t.cols[name] = &typedColumn[V]{vals: vals}
}

// Len returns the table's entry count.
func (t *Table) Len() int64 { return t.n }

func (t *Table) Parallelize(n int) error {
	t.slots = n
	return nil
}

// Partition splits [0, n) into as close to equal-sized contiguous
// ranges as fit the target chunk size, front-loading the remainder
// (spec.md §5's partition contract: non-overlapping, covering, order
// otherwise unspecified). The partition count is at least the last
// Parallelize call's slot count, but grows past it once there's more
// than one chunk's worth of entries per slot -- a Table routinely
// hands out more partitions than slots, the same as a real chunked
// file format would.
func (t *Table) Partition() ([]dataset.Partition, error) {
	n := int64(t.slots)
	if n < 1 {
		n = 1
	}
	if t.n == 0 {
		return nil, nil
	}
	chunkSize := t.chunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	numParts := n
	if byChunk := (t.n + chunkSize - 1) / chunkSize; byChunk > numParts {
		numParts = byChunk
	}
	if numParts > t.n {
		numParts = t.n
	}
	parts := make([]dataset.Partition, 0, numParts)
	chunk := t.n / numParts
	rem := t.n % numParts
	var begin int64
	for i := int64(0); i < numParts && begin < t.n; i++ {
		size := chunk
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		parts = append(parts, dataset.Partition{Begin: begin, End: begin + size})
		begin += size
	}
	return parts, nil
}

func (t *Table) ReadColumn(slot int, name string) (any, error) {
	c, ok := t.cols[name]
	if !ok {
		return nil, errors.Errorf("memtable: no column %q", name)
	}
	return c, nil
}

func (t *Table) Initialize(slot int, begin, end int64) error { return nil }
func (t *Table) Execute(slot int, entry int64) error         { return nil }
func (t *Table) Finalize(slot int) error                     { return nil }

// Identity makes Table opt into dataset.Fingerprint's double-load
// detection. Unlike a file-backed Source, an in-memory Table has no
// natural content identity cheaper than hashing every value, so
// Identity is keyed on the Table's own construction sequence number:
// two Dataflows over the very same *Table collide, but two freshly
// built fixtures of identical shape never do.
func (t *Table) Identity() []byte {
	names := make([]string, 0, len(t.cols))
	for k := range t.cols {
		names = append(names, k)
	}
	sort.Strings(names)
	return []byte(fmt.Sprintf("memtable:%d:%d:%v", t.id, t.n, names))
}
