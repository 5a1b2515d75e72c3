package segtree

import "github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"

// RangePointTree maintains a dynamic multiset of keys in [0, m) and
// answers, for a half-open query range [l, r), how many (and which, and
// a uniform sample of which) active points fall inside. It is spec
// component C5.
type RangePointTree struct {
	sk *skeleton
}

// NewRangePoint builds an empty range-point tree over [0, m).
// capacityHint is the expected maximum handle value, used only to
// presize per-handle bookkeeping.
func NewRangePoint(m, capacityHint int) *RangePointTree {
	return &RangePointTree{sk: newSkeleton(m, capacityHint)}
}

// Insert adds a point at key under handle. The point is stored on every
// node of key's leaf-to-root path, so later range queries see it in
// whichever cover node the query range happens to tile through.
func (t *RangePointTree) Insert(handle Handle, key int) {
	nodes := t.sk.ancestorPath(key)
	t.sk.insertAt(handle, nodes)
}

// Erase removes handle, previously inserted via Insert. O(log m).
func (t *RangePointTree) Erase(handle Handle) {
	t.sk.erase(handle)
}

// CountRange returns the number of active points in [l, r).
func (t *RangePointTree) CountRange(l, r int) int {
	return t.sk.countOverNodes(t.sk.coverNodes(l, r))
}

// ReportRange appends every active point's handle in [l, r) to out, in
// cover-node left-to-right then bucket order (append order, except where
// Erase swap-moved an entry).
func (t *RangePointTree) ReportRange(l, r int, out []Handle) []Handle {
	return t.sk.reportOverNodes(t.sk.coverNodes(l, r), out)
}

// SampleRange draws k handles uniformly (independently per draw) from
// the points in [l, r). Returns ErrEmptySample if k > 0 and the range is
// empty.
func (t *RangePointTree) SampleRange(l, r, k int, s *rng.Stream, out []Handle) ([]Handle, error) {
	return t.sk.sampleOverNodes(t.sk.coverNodes(l, r), k, s, out)
}

// ResetActive empties the tree without freeing the underlying skeleton.
func (t *RangePointTree) ResetActive() {
	t.sk.resetActive()
}

// Len returns the compressed domain size [0, m) the tree was built over.
func (t *RangePointTree) Len() int {
	return t.sk.m
}
