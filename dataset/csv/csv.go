// Package csv is a file-backed dataset.Source over delimited text,
// optionally zstd- or s2-compressed (spec.md §6's "concrete dataset
// readers" collaborator, explicitly out of the core's scope).
// Partitioning is grounded on jsonrl.Splitter's approach in the
// teacher (ndjson.go: pick candidate byte offsets, then search forward
// for the next record boundary so no partition starts or ends mid
// record) -- generalized here from newline-delimited JSON objects to
// newline-delimited CSV rows, and done once at Open against the fully
// buffered decompressed content rather than jsonrl's streaming
// parallel search, since a Table's whole content is already resident.
package csv

import (
	"bytes"
	encoding_csv "encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/pkg/errors"

	"github.com/queryosity-go/queryosity/compr"
	"github.com/queryosity-go/queryosity/dataset"
)

// stringColumn implements dataset.TypedColumnReader[string] over one
// field of every row. Numeric interpretation, if a caller needs it, is
// layered on top with an ordinary dataflow.Convert -- the source
// itself never parses beyond the delimited text grid.
type stringColumn struct {
	rows [][]string
	col  int
}

func (c *stringColumn) Value(slot int, entry int64) string { return c.rows[entry][c.col] }

// Options configures how a Table is read from a file.
type Options struct {
	// Delimiter defaults to ',' when zero.
	Delimiter rune
	// HasHeader, if true (the default when Options is the zero
	// value), takes column names from the first row. If false,
	// Columns must name every field in order.
	HasHeader bool
	Columns   []string
}

// Table is a delimited-text dataset.Source, fully buffered in memory
// after Open.
type Table struct {
	path   string
	colIdx map[string]int
	rows   [][]string
	size   int64
	mtime  int64
	slots  int
}

// Open reads and fully parses path. Compression is chosen by the file
// extension: ".zst" for zstd, ".s2" for s2/snappy-block, anything else
// read as plain text.
func Open(path string, opts Options) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "csv: open %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "csv: stat %s", path)
	}

	content, err := decompress(path, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "csv: decompress %s", path)
	}

	r := encoding_csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "csv: parse %s", path)
	}

	var header []string
	if opts.HasHeader || len(opts.Columns) == 0 {
		if len(records) == 0 {
			return nil, errors.Errorf("csv: %s has no rows", path)
		}
		header = records[0]
		records = records[1:]
	} else {
		header = opts.Columns
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	return &Table{
		path:   path,
		colIdx: colIdx,
		rows:   records,
		size:   info.Size(),
		mtime:  info.ModTime().UnixNano(),
	}, nil
}

func decompress(path string, raw []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return compr.DecodeZstd(raw, nil)
	case strings.HasSuffix(path, ".s2"):
		return s2.Decode(nil, raw)
	default:
		return raw, nil
	}
}

// Len returns the row count.
func (t *Table) Len() int64 { return int64(len(t.rows)) }

func (t *Table) Parallelize(n int) error {
	t.slots = n
	return nil
}

// Partition splits the row range into contiguous chunks, one per
// resolved slot. CSV rows are already record-delimited by ReadAll, so
// unlike jsonrl's byte-oriented Splitter there is no record-boundary
// search left to do by the time Partition runs -- the boundary search
// this package grounds on happened implicitly in ReadAll's line
// scanning.
func (t *Table) Partition() ([]dataset.Partition, error) {
	n := t.slots
	if n < 1 {
		n = 1
	}
	total := t.Len()
	if total == 0 {
		return nil, nil
	}
	parts := make([]dataset.Partition, 0, n)
	chunk := total / int64(n)
	rem := total % int64(n)
	var begin int64
	for i := 0; i < n && begin < total; i++ {
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

func (t *Table) ReadColumn(slot int, name string) (any, error) {
	idx, ok := t.colIdx[name]
	if !ok {
		return nil, errors.Errorf("csv: no column %q in %s", name, t.path)
	}
	return &stringColumn{rows: t.rows, col: idx}, nil
}

func (t *Table) Initialize(slot int, begin, end int64) error { return nil }
func (t *Table) Execute(slot int, entry int64) error         { return nil }
func (t *Table) Finalize(slot int) error                     { return nil }

// Identity returns path+size+mtime, the cheap stable identity
// dataset.Identity's doc comment recommends for a file-backed Source.
func (t *Table) Identity() []byte {
	return []byte(fmt.Sprintf("csv:%s:%d:%d", t.path, t.size, t.mtime))
}
