package segtree

import "github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"

// StabbingTree maintains a dynamic set of half-open y-intervals
// [L, R) ⊆ [0, m) and answers, at a query position q ∈ [0, m), how many
// (and which, and a uniform sample of which) active intervals contain q.
// It is spec component C4.
type StabbingTree struct {
	sk *skeleton
}

// NewStabbing builds an empty stabbing tree over [0, m). capacityHint is
// the expected maximum handle value (e.g. the event stream's E), used
// only to presize the per-handle bookkeeping.
func NewStabbing(m, capacityHint int) *StabbingTree {
	return &StabbingTree{sk: newSkeleton(m, capacityHint)}
}

// Insert adds interval [l, r) under handle. Insertion visits the
// canonical O(log m) cover of [l, r) and appends handle to each of those
// nodes' buckets.
func (t *StabbingTree) Insert(handle Handle, l, r int) {
	nodes := t.sk.coverNodes(l, r)
	t.sk.insertAt(handle, nodes)
}

// Erase removes handle, previously inserted via Insert. O(log m), no
// re-sort.
func (t *StabbingTree) Erase(handle Handle) {
	t.sk.erase(handle)
}

// Count returns the number of active intervals containing q.
func (t *StabbingTree) Count(q int) int {
	return t.sk.countOverNodes(t.sk.ancestorPath(q))
}

// Report appends every active interval's handle that contains q to out,
// walking q's root-to-leaf path and each node's bucket in bucket order
// (append order, except where Erase swap-moved an entry).
func (t *StabbingTree) Report(q int, out []Handle) []Handle {
	return t.sk.reportOverNodes(t.sk.ancestorPath(q), out)
}

// Sample draws k handles uniformly (with replacement across draws, each
// draw uniform over the currently-stabbed set) from the intervals
// containing q. Returns ErrEmptySample if k > 0 and no interval stabs q.
func (t *StabbingTree) Sample(q, k int, s *rng.Stream, out []Handle) ([]Handle, error) {
	return t.sk.sampleOverNodes(t.sk.ancestorPath(q), k, s, out)
}

// ResetActive empties the tree without freeing the underlying skeleton,
// so the same StabbingTree can be reused across sweeps.
func (t *StabbingTree) ResetActive() {
	t.sk.resetActive()
}

// Len returns the compressed domain size [0, m) the tree was built over.
func (t *StabbingTree) Len() int {
	return t.sk.m
}
