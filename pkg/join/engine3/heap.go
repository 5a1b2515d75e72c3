package engine3

// prefetchItem is one heap entry: the score of an event's most-recently
// pushed prefetch slot, and which event it belongs to.
type prefetchItem struct {
	score float64
	sid   int32
}

// prefetchHeap is a min-heap over prefetchItem.score, implementing
// container/heap.Interface. Popping the minimum always corresponds to
// some event's highest-numbered (least valuable) kept prefetch slot,
// given the score's monotonicity in slot index (spec.md §3's "Cache"
// invariant).
type prefetchHeap []prefetchItem

func (h prefetchHeap) Len() int           { return len(h) }
func (h prefetchHeap) Less(i, j int) bool { return h[i].score < h[j].score }
func (h prefetchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *prefetchHeap) Push(x any)        { *h = append(*h, x.(prefetchItem)) }

func (h *prefetchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}
