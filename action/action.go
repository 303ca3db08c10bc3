// Package action defines the lifecycle every node in a queryosity graph
// shares: columns, selections and queries alike are Actions first and
// whatever else (typed value producer, cutflow node, accumulator) second.
package action

// Action is the lifecycle contract every graph node implements.
//
// A non-nominal instance (one that belongs to a systematic variation)
// has Vary called on it exactly once, immediately after construction
// and before Initialize. Initialize/Execute/Finalize are then called
// once per partition a slot processes, in that order, with Execute
// invoked once per entry in ascending order within the partition. No
// Execute happens before Initialize completes on the same slot, and
// Finalize happens after the partition's last Execute.
type Action interface {
	// Vary is invoked on non-nominal instances right after
	// construction, naming the variation they belong to. The default
	// implementation is a no-op: most actions don't need to know
	// their own variation name, only to exist as an alternate in a
	// varied.Varied map.
	Vary(name string)

	// Initialize prepares the action to process entries
	// [begin, end) on the given slot.
	Initialize(slot int, begin, end int64) error

	// Execute processes one entry. It is called once per entry per
	// slot, in ascending entry order within a partition.
	Execute(slot int, entry int64) error

	// Finalize is called after the last Execute of each partition the
	// slot processes.
	Finalize(slot int) error
}

// Base is embedded by concrete actions that don't need to override
// every lifecycle method. It implements Action as a set of no-ops.
type Base struct{}

func (Base) Vary(name string) {}

func (Base) Initialize(slot int, begin, end int64) error { return nil }

func (Base) Execute(slot int, entry int64) error { return nil }

func (Base) Finalize(slot int) error { return nil }

// List runs Initialize/Finalize over a slice of actions in order,
// stopping at the first error. Player uses the analogous per-entry
// loop directly rather than through List, since it must interleave
// the dataset source's own lifecycle calls.
type List []Action

func (l List) Initialize(slot int, begin, end int64) error {
	for _, a := range l {
		if err := a.Initialize(slot, begin, end); err != nil {
			return err
		}
	}
	return nil
}

func (l List) Execute(slot int, entry int64) error {
	for _, a := range l {
		if err := a.Execute(slot, entry); err != nil {
			return err
		}
	}
	return nil
}

// Finalize runs Finalize on every action, collecting only the first
// error but still calling Finalize on the rest -- a slot tears down
// its whole graph even if one action's teardown fails.
func (l List) Finalize(slot int) error {
	var first error
	for _, a := range l {
		if err := a.Finalize(slot); err != nil && first == nil {
			first = err
		}
	}
	return first
}
