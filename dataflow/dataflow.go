// Package dataflow is the front-end: the statically-typed builder API a
// caller uses to wire columns, selections, and queries into a DAG, plus
// the Dataflow type that owns per-slot replication, scheduling, and the
// idempotent analyze-on-first-read cache of spec.md §4.7.
package dataflow

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/queryosity-go/queryosity/action"
	"github.com/queryosity-go/queryosity/dataset"
	"github.com/queryosity-go/queryosity/player"
	"github.com/queryosity-go/queryosity/processor"
	"github.com/queryosity-go/queryosity/query"
)

// Dataflow is the top-level entry point: one dataset source, a fixed
// slot count decided at construction, and the registries every builder
// call under it appends to.
//
// Slot count is resolved once, at New, rather than deferred to first
// read: the configuration keyword set (spec.md §4.1's multithread and
// weight options) is constructor-only, so every later builder call can
// replicate eagerly against an already-known slot count instead of
// recording a thunk to run later.
type Dataflow struct {
	id   uuid.UUID
	log  *zap.Logger
	src  dataset.Source
	nslots int
	head int64
	weight float64

	proc *processor.Processor

	perSlot   [][]action.Action
	terminals [][]query.Terminal

	analyzed    bool
	analyzeErr  error
}

// Option configures a Dataflow at construction.
type Option func(*Dataflow)

// MultithreadEnable sets the slot count explicitly.
func MultithreadEnable(n int) Option {
	return func(d *Dataflow) { d.nslots = n }
}

// MultithreadDisable pins the dataflow to a single slot.
func MultithreadDisable() Option {
	return func(d *Dataflow) { d.nslots = 1 }
}

// Head caps the total entries processed across all partitions. Pass a
// negative n to disable the cap (the default).
func Head(n int64) Option {
	return func(d *Dataflow) { d.head = n }
}

// Weight sets the dataflow-global weight multiplier applied to every
// query's scale at book time (spec.md §4.6).
func Weight(w float64) Option {
	return func(d *Dataflow) { d.weight = w }
}

// Logger attaches a structured logger. The zero value logs nothing.
func Logger(l *zap.Logger) Option {
	return func(d *Dataflow) { d.log = l }
}

// New builds a Dataflow over src. It fails if src implements
// dataset.Identity and any earlier Dataflow in this process already
// loaded the same identity (spec.md §9's double-load open question);
// registrations are only released by dataset.ForgetFingerprint.
func New(src dataset.Source, opts ...Option) (*Dataflow, error) {
	d := &Dataflow{
		weight: 1,
		head:   -1,
		nslots: runtime.NumCPU(),
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.nslots < 1 {
		d.nslots = 1
	}
	if _, err := dataset.Fingerprint(src); err != nil {
		return nil, errors.Wrap(err, "dataflow: new")
	}
	d.id = uuid.New()
	d.src = src
	d.perSlot = make([][]action.Action, d.nslots)
	d.proc = &processor.Processor{Concurrency: d.nslots, Head: d.head, Log: d.log}
	return d, nil
}

// ID returns the dataflow's run identifier, used in log fields.
func (d *Dataflow) ID() uuid.UUID { return d.id }

// Slots returns the resolved slot count.
func (d *Dataflow) Slots() int { return d.nslots }

// Err forces analyze if it hasn't run yet and returns its result. Every
// Result()/Value() read on a handle already does this implicitly;
// Err exists for callers that want to trigger and check a run without
// reading any particular handle's value.
func (d *Dataflow) Err() error { return d.analyze() }

// register appends a to slot's action list and invalidates the
// analyze cache, the same as registerTerminal: a column/selection
// booked after an earlier read must be initialized and executed on
// the next run, not skipped by a stale cache hit.
func (d *Dataflow) register(slot int, a action.Action) {
	d.perSlot[slot] = append(d.perSlot[slot], a)
	d.analyzed = false
	d.analyzeErr = nil
}

// registerTerminal records one query's per-slot replicas for the merge
// step, and invalidates the analyze cache: spec.md §4.7 requires a new
// booking to trigger a fresh run on next read even if an earlier query
// was already resolved.
func (d *Dataflow) registerTerminal(reps []query.Terminal) {
	d.terminals = append(d.terminals, reps)
	d.analyzed = false
	d.analyzeErr = nil
}

// analyze runs the dataflow exactly once per registration generation:
// repeated calls after a successful run are no-ops (spec.md §4.7's
// memoization invariant applied at the whole-graph level), and a
// booking made after the last run re-arms it.
func (d *Dataflow) analyze() error {
	if d.analyzed {
		return d.analyzeErr
	}
	d.analyzed = true
	d.analyzeErr = d.run()
	return d.analyzeErr
}

func (d *Dataflow) run() error {
	err := d.proc.Run(d.src, func(slot int) *player.Player {
		return player.New(slot, d.src, d.perSlot[slot])
	})
	if err != nil {
		return errors.Wrap(err, "dataflow: run")
	}
	for _, reps := range d.terminals {
		query.Merge(reps)
	}
	d.log.Debug("dataflow analyzed",
		zap.String("id", d.id.String()),
		zap.Int("queries", len(d.terminals)),
	)
	return nil
}
