// Package dataset declares the external-collaborator contracts a
// concrete dataset implementation must satisfy (spec.md §6), plus a
// few helpers the core engine needs around them: partition truncation
// for head(n) and a content fingerprint for double-load detection.
package dataset

import (
	"sync"

	"github.com/pkg/errors"
)

// Partition is a half-open entry range [Begin, End) assigned to one
// slot for one pass of its player. Partitions from one Source.Partition
// call are non-overlapping and together cover the logical entry space;
// their ordering is arbitrary but stable within that one call.
type Partition struct {
	Begin, End int64
}

// Len returns the number of entries in the partition.
func (p Partition) Len() int64 { return p.End - p.Begin }

// Source is implemented by a concrete dataset reader. All methods may
// be called concurrently from distinct slots except Parallelize and
// Partition, which run once, before any slot begins (spec.md §5's
// shared-resource policy).
type Source interface {
	// Parallelize prepares n independent per-slot cursors.
	Parallelize(n int) error

	// Partition returns the non-overlapping half-open ranges covering
	// the logical entry space.
	Partition() ([]Partition, error)

	// ReadColumn returns a reader for the named field on the given
	// slot. Implementations must fail fast if the name or its type is
	// unavailable; the caller type-asserts the result to
	// TypedColumnReader[V] for the V it expects.
	ReadColumn(slot int, name string) (any, error)

	// Initialize seeks the slot's cursor to begin, in preparation for
	// Execute calls covering [begin, end).
	Initialize(slot int, begin, end int64) error

	// Execute advances the slot's cursor to entry, so that subsequent
	// TypedColumnReader.Value calls for this slot reflect entry.
	Execute(slot int, entry int64) error

	// Finalize releases any per-slot state acquired by Initialize.
	Finalize(slot int) error
}

// TypedColumnReader is implemented by the reader a Source.ReadColumn
// call returns, parameterized over the value type it produces.
type TypedColumnReader[V any] interface {
	// Value returns the field's value for (slot, entry). The
	// reference backing V, if V holds one, remains valid until the
	// next Execute or Finalize call for that slot.
	Value(slot int, entry int64) V
}

// TruncatePartitions caps the total number of entries described by
// parts at n, splitting the partition that straddles the boundary
// rather than rounding down to a whole-partition boundary. This
// resolves spec.md §9's open question in favor of the invariant
// spec.md §8's "Head cap" scenario requires: the total entries
// observed is exactly min(n, total).
//
// Partition order is preserved; parts itself is not mutated.
func TruncatePartitions(parts []Partition, n int64) []Partition {
	if n < 0 {
		return append([]Partition(nil), parts...)
	}
	out := make([]Partition, 0, len(parts))
	var seen int64
	for _, p := range parts {
		if seen >= n {
			break
		}
		remaining := n - seen
		if p.Len() <= remaining {
			out = append(out, p)
			seen += p.Len()
			continue
		}
		out = append(out, Partition{Begin: p.Begin, End: p.Begin + remaining})
		seen = n
		break
	}
	return out
}

// TotalEntries sums the entries described by parts.
func TotalEntries(parts []Partition) int64 {
	var total int64
	for _, p := range parts {
		total += p.Len()
	}
	return total
}

// Identity is implemented by a Source that can report a stable
// fingerprint for itself, used by Fingerprint below to detect the same
// dataset being loaded into two Dataflows. Sources that don't
// implement Identity are never flagged as duplicates -- fingerprinting
// is opt-in, since not every collaborator has a cheap stable identity
// (spec.md §9's open question is resolved in favor of detection only
// where a Source can support it cheaply).
type Identity interface {
	// Identity returns a byte blob that uniquely determines the
	// dataset's contents, e.g. a file path plus size and mtime, or a
	// table name plus schema version. Two Sources over the same
	// logical dataset must return the same blob.
	Identity() []byte
}

var (
	loadedMu sync.Mutex
	loaded   = map[string]struct{}{}
)

// ErrAlreadyLoaded is returned by Fingerprint when the same Identity
// has already been registered by an earlier call.
var ErrAlreadyLoaded = errors.New("dataset: already loaded")

// Fingerprint registers src's identity (if it implements Identity) and
// returns ErrAlreadyLoaded if the same identity was already registered
// by a prior call. Sources without an Identity always succeed. This is
// the detect-and-refuse resolution of spec.md §9's double-load open
// question; see DESIGN.md.
func Fingerprint(src Source) (string, error) {
	ident, ok := src.(Identity)
	if !ok {
		return "", nil
	}
	key := blake2bHex(ident.Identity())
	loadedMu.Lock()
	defer loadedMu.Unlock()
	if _, dup := loaded[key]; dup {
		return key, errors.Wrapf(ErrAlreadyLoaded, "fingerprint %s", key)
	}
	loaded[key] = struct{}{}
	return key, nil
}

// ForgetFingerprint removes a previously registered fingerprint,
// letting a test suite reuse the same Identity across independent
// Dataflows without tripping ErrAlreadyLoaded.
func ForgetFingerprint(key string) {
	loadedMu.Lock()
	defer loadedMu.Unlock()
	delete(loaded, key)
}
