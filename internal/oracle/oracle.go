// Package oracle is a test-only O(|R|*|S|) brute-force join checker,
// used by the engine test suites to cross-check Count's exact
// cardinality and to validate that every sampled or enumerated pair is
// a genuine intersection.
package oracle

import "github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"

// Pairs returns every (r_id, s_id) pair whose rectangles intersect,
// computed by brute force over all |R|*|S| combinations.
func Pairs(d geo.Dataset) []Pair {
	var pairs []Pair

	for _, rb := range d.R.Boxes {
		for _, sb := range d.S.Boxes {
			if rb.Rect.Intersects(sb.Rect) {
				pairs = append(pairs, Pair{RId: rb.Id, SId: sb.Id})
			}
		}
	}

	return pairs
}

// Pair mirrors join.Pair without importing pkg/join, so this package
// stays usable from tests of pkg/join's own subpackages without an
// import cycle risk.
type Pair struct {
	RId uint32
	SId uint32
}

// Count returns |J|, the number of intersecting (r, s) pairs.
func Count(d geo.Dataset) uint64 {
	var n uint64

	for _, rb := range d.R.Boxes {
		for _, sb := range d.S.Boxes {
			if rb.Rect.Intersects(sb.Rect) {
				n++
			}
		}
	}

	return n
}

// Set returns the intersecting pairs as a lookup set, keyed the same
// way as Pairs, for O(1) membership checks against a sampled or
// enumerated result.
func Set(d geo.Dataset) map[Pair]bool {
	set := make(map[Pair]bool)

	for _, p := range Pairs(d) {
		set[p] = true
	}

	return set
}
