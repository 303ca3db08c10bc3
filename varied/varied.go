// Package varied implements the variation algebra: a nominal value
// plus a name-keyed map of alternates, and the free functions that
// propagate operations over it (spec.md §4.8, §9 -- "avoid
// inheritance, use free functions for operator propagation").
package varied

import (
	"fmt"

	"github.com/mitchellh/hashstructure"
	"golang.org/x/exp/slices"
)

// Varied is a nominal T plus a name-keyed map of alternates. The key
// set's iteration order is stable (insertion order, exposed sorted by
// Names for determinism across runs).
type Varied[T any] struct {
	Nominal  T
	variants map[string]T
	order    []string
}

// Of wraps nominal with no variants.
func Of[T any](nominal T) *Varied[T] {
	return &Varied[T]{Nominal: nominal, variants: map[string]T{}}
}

// Vary constructs a Varied from a nominal value and a map of named
// alternates (spec.md §4.8's vary(arg, {name -> alternate, ...})).
// Iteration order of names follows a sorted pass over the map, since
// Go map iteration order is not itself stable.
func Vary[T any](nominal T, alternates map[string]T) *Varied[T] {
	v := Of(nominal)
	names := make([]string, 0, len(alternates))
	for n := range alternates {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		v.Set(n, alternates[n])
	}
	return v
}

// Set registers or overwrites the alternate for name.
func (v *Varied[T]) Set(name string, alt T) {
	if _, ok := v.variants[name]; !ok {
		v.order = append(v.order, name)
	}
	v.variants[name] = alt
}

// HasVariation reports whether name has a registered alternate.
func (v *Varied[T]) HasVariation(name string) bool {
	_, ok := v.variants[name]
	return ok
}

// Variation returns the alternate for name, falling back silently to
// Nominal if name isn't registered (spec.md §4.8's resolver contract;
// this is the non-terminal lookup that enables transparent
// propagation -- see At for the terminal `[name]` alias that errors
// instead).
func (v *Varied[T]) Variation(name string) T {
	if alt, ok := v.variants[name]; ok {
		return alt
	}
	return v.Nominal
}

// At is the terminal `[name]` alias: unlike Variation, it reports an
// error when name has no registered alternate (spec.md §4.8, §4.9).
func (v *Varied[T]) At(name string) (T, error) {
	if alt, ok := v.variants[name]; ok {
		return alt, nil
	}
	var zero T
	return zero, fmt.Errorf("varied: no variation %q", name)
}

// Names returns the registered variation names in stable sorted order.
func (v *Varied[T]) Names() []string {
	out := append([]string(nil), v.order...)
	slices.Sort(out)
	return out
}

// unionNames returns the sorted union of two name sets.
func unionNames(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, n := range a {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for _, n := range b {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// MapUnary propagates a unary operation over a Varied: the result
// carries the same name set as v, with op applied to the nominal and
// to each variant independently (spec.md §4.8's unary-op rule).
func MapUnary[A, B any](v *Varied[A], op func(A) B) *Varied[B] {
	out := Of(op(v.Nominal))
	for _, n := range v.Names() {
		out.Set(n, op(v.Variation(n)))
	}
	return out
}

// MapBinary propagates a binary operation over two Varieds: the
// result's name set is names(a) ∪ names(b); for each name, an operand
// missing that name falls back to its own nominal (spec.md §4.8's
// binary-op rule and fallback invariant).
func MapBinary[A, B, C any](a *Varied[A], b *Varied[B], op func(A, B) C) *Varied[C] {
	out := Of(op(a.Nominal, b.Nominal))
	for _, n := range unionNames(a.Names(), b.Names()) {
		out.Set(n, op(a.Variation(n), b.Variation(n)))
	}
	return out
}

// MapTernary is the three-operand analogue of MapBinary, used when a
// column or selection is built from three varied inputs at once.
func MapTernary[A, B, C, D any](a *Varied[A], b *Varied[B], c *Varied[C], op func(A, B, C) D) *Varied[D] {
	out := Of(op(a.Nominal, b.Nominal, c.Nominal))
	names := unionNames(unionNames(a.Names(), b.Names()), c.Names())
	for _, n := range names {
		out.Set(n, op(a.Variation(n), b.Variation(n), c.Variation(n)))
	}
	return out
}

// Fingerprint returns a stable hash of v's variation name set. Nothing
// else in the module calls it; in particular dataset.Fingerprint's
// dedupe key does not include it. Grounded on
// dolthub/go-mysql-server's use of the same library to hash query-plan
// nodes for its memoization cache (sql/memo) -- same idea, applied to
// a name set instead of a plan node.
func Fingerprint[T any](v *Varied[T]) (uint64, error) {
	return hashstructure.Hash(v.Names(), nil)
}
