// Package player owns one slot's replica of the whole action graph and
// drives its per-entry loop over one partition at a time (spec.md
// §4.5). Grounded on plan.Tree.exec/executor.runtask
// (plan/exec.go in the teacher), generalized from "one table, one
// sink" to "one partition range, N actions in registration order".
package player

import (
	"github.com/queryosity-go/queryosity/action"
	"github.com/queryosity-go/queryosity/dataset"
)

// Player runs a fixed slot's entry loop: source.Initialize, then each
// action's Initialize, then for every entry in [begin, end),
// source.Execute followed by every action's Execute in registration
// order, then Finalize in the reverse of that shape. Columns still
// compute lazily on first Value() read regardless of where in the
// registration order they sit -- registration order only fixes the
// order Execute is called in, not when a column's value is actually
// produced.
type Player struct {
	slot    int
	source  dataset.Source
	actions []action.Action
}

// New builds a player for the given slot, source, and the slot's
// action replicas in registration order (columns, then selections,
// then queries, matching spec.md §4.5 -- though since values are
// lazily memoized, the only thing this order actually guarantees is
// that every action's Execute runs exactly once per entry before any
// of their Finalize runs).
func New(slot int, source dataset.Source, actions []action.Action) *Player {
	return &Player{slot: slot, source: source, actions: actions}
}

// Run processes the half-open entry range [begin, end).
func (p *Player) Run(begin, end int64) error {
	if err := p.source.Initialize(p.slot, begin, end); err != nil {
		return err
	}
	for _, a := range p.actions {
		if err := a.Initialize(p.slot, begin, end); err != nil {
			return err
		}
	}
	for e := begin; e < end; e++ {
		if err := p.source.Execute(p.slot, e); err != nil {
			return err
		}
		for _, a := range p.actions {
			if err := a.Execute(p.slot, e); err != nil {
				return err
			}
		}
	}
	var ferr error
	for _, a := range p.actions {
		if err := a.Finalize(p.slot); err != nil && ferr == nil {
			ferr = err
		}
	}
	if err := p.source.Finalize(p.slot); err != nil && ferr == nil {
		ferr = err
	}
	return ferr
}
