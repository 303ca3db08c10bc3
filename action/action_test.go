package action

import "testing"

type recorder struct {
	Base
	inits, execs, finals []int
}

func (r *recorder) Initialize(slot int, begin, end int64) error {
	r.inits = append(r.inits, slot)
	return nil
}

func (r *recorder) Execute(slot int, entry int64) error {
	r.execs = append(r.execs, slot)
	return nil
}

func (r *recorder) Finalize(slot int) error {
	r.finals = append(r.finals, slot)
	return nil
}

func TestListRunsEveryAction(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	l := List{a, b}

	if err := l.Initialize(0, 0, 10); err != nil {
		t.Fatal(err)
	}
	if err := l.Execute(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := l.Finalize(0); err != nil {
		t.Fatal(err)
	}

	for _, r := range []*recorder{a, b} {
		if len(r.inits) != 1 || len(r.execs) != 1 || len(r.finals) != 1 {
			t.Fatalf("expected one call each, got inits=%v execs=%v finals=%v", r.inits, r.execs, r.finals)
		}
	}
}

type failFinalize struct {
	Base
	err error
}

func (f *failFinalize) Finalize(slot int) error { return f.err }

func TestListFinalizeCollectsFirstErrorButRunsAll(t *testing.T) {
	errA := errString("a")
	errB := errString("b")
	a := &failFinalize{err: errA}
	b := &failFinalize{err: errB}
	c := &recorder{}
	l := List{a, b, c}

	err := l.Finalize(0)
	if err != errA {
		t.Fatalf("expected first error %v, got %v", errA, err)
	}
	if len(c.finals) != 1 {
		t.Fatal("expected Finalize to still run on every action after the first error")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
