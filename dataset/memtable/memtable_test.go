package memtable

import (
	"testing"

	"github.com/queryosity-go/queryosity/dataset"
)

func TestPartitionCoversAllEntriesEvenly(t *testing.T) {
	tbl := New(10)
	AddColumn(tbl, "v", make([]int, 10))
	SetChunkSize(tbl, 10) // force exactly one partition per slot
	if err := tbl.Parallelize(3); err != nil {
		t.Fatal(err)
	}
	parts, err := tbl.Partition()
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) != 3 {
		t.Fatalf("got %d partitions, want 3", len(parts))
	}
	if got := dataset.TotalEntries(parts); got != 10 {
		t.Fatalf("total entries = %d, want 10", got)
	}
}

func TestPartitionOversubscribesSlotsByDefault(t *testing.T) {
	tbl := New(10)
	AddColumn(tbl, "v", make([]int, 10))
	if err := tbl.Parallelize(2); err != nil {
		t.Fatal(err)
	}
	parts, err := tbl.Partition()
	if err != nil {
		t.Fatal(err)
	}
	if len(parts) <= 2 {
		t.Fatalf("got %d partitions, want more than the 2 requested slots", len(parts))
	}
	if got := dataset.TotalEntries(parts); got != 10 {
		t.Fatalf("total entries = %d, want 10", got)
	}
}

func TestReadColumnTypeMismatchErrors(t *testing.T) {
	tbl := New(2)
	AddColumn(tbl, "v", []int{1, 2})
	raw, err := tbl.ReadColumn(0, "v")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := raw.(dataset.TypedColumnReader[string]); ok {
		t.Fatal("an int column should not satisfy TypedColumnReader[string]")
	}
	typed, ok := raw.(dataset.TypedColumnReader[int])
	if !ok {
		t.Fatal("an int column should satisfy TypedColumnReader[int]")
	}
	if typed.Value(0, 1) != 2 {
		t.Fatalf("Value(0,1) = %d, want 2", typed.Value(0, 1))
	}
}

func TestTwoTablesOfIdenticalShapeHaveDistinctIdentity(t *testing.T) {
	a := New(2)
	AddColumn(a, "v", []int{1, 2})
	b := New(2)
	AddColumn(b, "v", []int{1, 2})
	if string(a.Identity()) == string(b.Identity()) {
		t.Fatal("two independently constructed Tables must not collide")
	}
}
