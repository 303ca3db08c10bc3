// Package badger is a KV-backed dataset.Source over a BadgerDB
// database, for datasets too large to hold in memory (spec.md §6's
// "concrete dataset readers" collaborator). Grounded directly on
// wbrown/janus-datalog's datalog/storage.BadgerStore: same
// badger.DefaultOptions + disabled logger + read-heavy cache tuning,
// same "one key per fact" indexing idea, narrowed here to one key per
// (row, column) pair instead of BadgerStore's five-index datom layout.
package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/queryosity-go/queryosity/dataset"
)

// Table is a row-oriented dataset.Source backed by a Badger database:
// every cell is stored under a key encoding its row index and column
// name.
type Table struct {
	db    *badger.DB
	path  string
	rows  int64
	slots int
	cols  map[string]struct{}
}

// Open opens (creating if necessary) the Badger database at path,
// tuned the same way BadgerStore tunes it for a read-heavy scan
// workload, and reports it as holding rows entries (the row count is
// the caller's responsibility to track, since Badger itself has no
// notion of "this is a row-oriented table").
func Open(path string, rows int64) (*Table, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.BlockCacheSize = 256 << 20
	opts.IndexCacheSize = 100 << 20
	opts.DetectConflicts = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "badger: open %s", path)
	}
	return &Table{db: db, path: path, rows: rows, cols: map[string]struct{}{}}, nil
}

// Close releases the underlying database handle.
func (t *Table) Close() error { return t.db.Close() }

func encodeKey(row int64, col string) []byte {
	key := make([]byte, 8+len(col))
	binary.BigEndian.PutUint64(key[:8], uint64(row))
	copy(key[8:], col)
	return key
}

// Put writes one cell. Callers load a Table by calling Put for every
// (row, column) pair before handing it to a Dataflow.
func (t *Table) Put(row int64, col string, value string) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(row, col), []byte(value))
	})
	if err != nil {
		return errors.Wrapf(err, "badger: put (%d, %q)", row, col)
	}
	t.cols[col] = struct{}{}
	return nil
}

// Len returns the configured row count.
func (t *Table) Len() int64 { return t.rows }

func (t *Table) Parallelize(n int) error {
	t.slots = n
	return nil
}

func (t *Table) Partition() ([]dataset.Partition, error) {
	n := t.slots
	if n < 1 {
		n = 1
	}
	if t.rows == 0 {
		return nil, nil
	}
	parts := make([]dataset.Partition, 0, n)
	chunk := t.rows / int64(n)
	rem := t.rows % int64(n)
	var begin int64
	for i := 0; i < n && begin < t.rows; i++ {
		size := chunk
		if int64(i) < rem {
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

// columnReader implements dataset.TypedColumnReader[string], reading
// through a fresh read-only Badger transaction per Value call. Badger
// transactions are safe for concurrent use from distinct goroutines,
// matching spec.md §5's per-slot concurrent read requirement.
type columnReader struct {
	db  *badger.DB
	col string
}

// Value panics on a missing key or a transaction failure rather than
// returning the zero value. TypedColumnReader.Value has no error
// return, so a read failure for a column ReadColumn already confirmed
// exists is an integrity violation (a row Put never reached this
// column), not a condition the caller can recover from -- spec.md §6's
// "fail fast if name/type unavailable" reader contract, extended to
// the per-entry read path the only way this interface allows.
func (r *columnReader) Value(slot int, entry int64) string {
	var out string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(entry, r.col))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = string(val)
			return nil
		})
	})
	if err != nil {
		panic(fmt.Sprintf("badger: read (%d, %q): %v", entry, r.col, err))
	}
	return out
}

func (t *Table) ReadColumn(slot int, name string) (any, error) {
	if _, ok := t.cols[name]; !ok {
		return nil, errors.Errorf("badger: no column %q", name)
	}
	return &columnReader{db: t.db, col: name}, nil
}

func (t *Table) Initialize(slot int, begin, end int64) error { return nil }
func (t *Table) Execute(slot int, entry int64) error         { return nil }
func (t *Table) Finalize(slot int) error                     { return nil }

// Identity returns the database path: two Tables opened against the
// same path are the same dataset.
func (t *Table) Identity() []byte { return []byte("badger:" + t.path) }
