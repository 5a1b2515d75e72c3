// Package activeindex composes the stabbing tree and the range-point
// tree (pkg/segtree) into the per-side active index (spec component
// C6): the set of rectangles on one side whose Start event has been
// processed but whose End has not, indexed both ways so Pattern A and
// Pattern B weight queries (spec.md §3) are each O(log m + k).
package activeindex

import (
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/segtree"
)

// Handle identifies an active rectangle; in the sweep this is the dense
// Start-id assigned during Build.
type Handle = segtree.Handle

// Index is one side's active set: a stabbing tree keyed by ylo_rank over
// [ylo_rank, yhi_lb_rank), and a range-point tree keyed by ylo_rank —
// the same compressed y-domain, inserted and erased together.
type Index struct {
	stab   *segtree.StabbingTree
	points *segtree.RangePointTree
}

// New builds an empty active index over the compressed y-domain [0, m).
// capacityHint presizes the per-handle bookkeeping; inserting a larger
// handle grows it on demand.
func New(m, capacityHint int) *Index {
	return &Index{
		stab:   segtree.NewStabbing(m, capacityHint),
		points: segtree.NewRangePoint(m, capacityHint),
	}
}

// Insert adds a rectangle with y-interval [yloRank, yhiLbRank) to both
// trees under handle.
func (idx *Index) Insert(handle Handle, yloRank, yhiLbRank int) {
	idx.stab.Insert(handle, yloRank, yhiLbRank)
	idx.points.Insert(handle, yloRank)
}

// Erase removes handle from both trees.
func (idx *Index) Erase(handle Handle) {
	idx.stab.Erase(handle)
	idx.points.Erase(handle)
}

// CountA returns w_A: the number of active rectangles whose y-interval
// contains qYloRank (Pattern A — containment of the query's lo[1]).
func (idx *Index) CountA(qYloRank int) int {
	return idx.stab.Count(qYloRank)
}

// CountB returns w_B: the number of active rectangles whose lo[1] lies
// strictly above qYloRank but strictly below qYhiRank (Pattern B). The
// query range [qYloRank+1, qYhiRank) is clamped into [0, m) by the
// underlying trees.
func (idx *Index) CountB(qYloRank, qYhiRank int) int {
	return idx.points.CountRange(qYloRank+1, qYhiRank)
}

// SampleA draws k handles uniformly from the Pattern-A partner set.
func (idx *Index) SampleA(qYloRank, k int, s *rng.Stream, out []Handle) ([]Handle, error) {
	return idx.stab.Sample(qYloRank, k, s, out)
}

// SampleB draws k handles uniformly from the Pattern-B partner set.
func (idx *Index) SampleB(qYloRank, qYhiRank, k int, s *rng.Stream, out []Handle) ([]Handle, error) {
	return idx.points.SampleRange(qYloRank+1, qYhiRank, k, s, out)
}

// ReportA appends every Pattern-A partner handle to out.
func (idx *Index) ReportA(qYloRank int, out []Handle) []Handle {
	return idx.stab.Report(qYloRank, out)
}

// ReportB appends every Pattern-B partner handle to out.
func (idx *Index) ReportB(qYloRank, qYhiRank int, out []Handle) []Handle {
	return idx.points.ReportRange(qYloRank+1, qYhiRank, out)
}

// ResetActive empties both trees, ready for the next sweep.
func (idx *Index) ResetActive() {
	idx.stab.ResetActive()
	idx.points.ResetActive()
}
