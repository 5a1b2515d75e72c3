// Package segtree implements the two augmented segment trees the sweep
// relies on (spec components C4 and C5): a stabbing tree answering point
// queries against a dynamic set of intervals, and a range-point tree
// answering range queries against a dynamic multiset of keys. Both are
// built on the same flat, complete-binary-tree skeleton — a node array
// plus per-node buckets and a side table of bucket positions — so that
// Erase never needs parent pointers or a re-sort (spec.md §9).
package segtree

import (
	"errors"
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

// ErrEmptySample is returned by a sample call when the queried set is
// empty but k > 0 draws were requested.
var ErrEmptySample = errors.New("segtree: sample requested from empty set")

// Handle identifies one inserted interval or point across both trees. In
// the sweep (pkg/sweep), handles are dense Start-event ids, unique for
// the lifetime of the active set that holds them.
type Handle = uint32

// location records where one handle's bucket entry lives: which node,
// and its position within that node's bucket. A handle touches exactly
// the O(log p) nodes of its canonical cover (stabbing insert, or
// range-point's leaf-to-root chain), so locations are stored as a small
// slice per handle rather than a single value.
type location struct {
	node int32
	pos  int32
}

// bucketEntry is one slot in a node's bucket: the handle it belongs to,
// plus the index into that handle's own locations slice, so a swap-move
// during Erase can patch the moved entry's recorded position in O(1).
type bucketEntry struct {
	handle Handle
	locIdx int32
}

// skeleton is the flat array of buckets shared by both tree flavors.
// Node 1 is the root; node i's children are 2i and 2i+1; leaves occupy
// [p, 2p). A complete binary tree over p = next power of two >= m leaves
// keeps every canonical decomposition and every leaf-to-root walk at
// exactly O(log p).
type skeleton struct {
	buckets   [][]bucketEntry
	locations [][]location
	m         int
	p         int
}

func newSkeleton(m int, capacityHint int) *skeleton {
	p := 1
	for p < m {
		p *= 2
	}

	if p == 0 {
		p = 1
	}

	return &skeleton{
		buckets:   make([][]bucketEntry, 2*p),
		locations: make([][]location, capacityHint),
		m:         m,
		p:         p,
	}
}

// resetActive empties every bucket and every handle's location record
// without freeing the node array, per spec.md §4.4/§4.5's reset_active.
func (sk *skeleton) resetActive() {
	for i := range sk.buckets {
		sk.buckets[i] = sk.buckets[i][:0]
	}

	for i := range sk.locations {
		sk.locations[i] = nil
	}
}

// ensureCapacity grows the per-handle locations slice so handle is a
// valid index. Handles are dense Start-ids assigned during Build, so in
// practice this never needs to grow after the first call per sweep.
func (sk *skeleton) ensureCapacity(handle Handle) {
	if int(handle) < len(sk.locations) {
		return
	}

	grown := make([][]location, int(handle)+1)
	copy(grown, sk.locations)
	sk.locations = grown
}

// insertAt appends handle to every node in nodes, recording each
// placement in the handle's locations slice.
func (sk *skeleton) insertAt(handle Handle, nodes []int32) {
	sk.ensureCapacity(handle)

	locs := make([]location, len(nodes))

	for i, node := range nodes {
		pos := int32(len(sk.buckets[node]))
		sk.buckets[node] = append(sk.buckets[node], bucketEntry{handle: handle, locIdx: int32(i)})
		locs[i] = location{node: node, pos: pos}
	}

	sk.locations[handle] = locs
}

// erase removes handle from every node it was inserted into, via
// swap-delete against the recorded positions — O(log p) total, no
// re-sort, no parent pointers.
func (sk *skeleton) erase(handle Handle) {
	locs := sk.locations[handle]

	for _, loc := range locs {
		bucket := sk.buckets[loc.node]
		last := len(bucket) - 1

		if int(loc.pos) != last {
			moved := bucket[last]
			bucket[loc.pos] = moved
			sk.locations[moved.handle][moved.locIdx] = location{node: loc.node, pos: loc.pos}
		}

		sk.buckets[loc.node] = bucket[:last]
	}

	sk.locations[handle] = nil
}

// coverNodes computes the canonical O(log p) decomposition of the
// half-open range [l, r) into disjoint nodes that exactly tile it.
func (sk *skeleton) coverNodes(l, r int) []int32 {
	if r <= l {
		return nil
	}

	if l < 0 {
		l = 0
	}

	if r > sk.p {
		r = sk.p
	}

	if r <= l {
		return nil
	}

	var out []int32

	sk.collectCover(1, 0, sk.p, l, r, &out)

	return out
}

func (sk *skeleton) collectCover(node, nodeLo, nodeHi, l, r int, out *[]int32) {
	if nodeHi <= l || nodeLo >= r {
		return
	}

	if l <= nodeLo && nodeHi <= r {
		*out = append(*out, int32(node))

		return
	}

	mid := (nodeLo + nodeHi) / 2
	sk.collectCover(2*node, nodeLo, mid, l, r, out)
	sk.collectCover(2*node+1, mid, nodeHi, l, r, out)
}

// ancestorPath returns every node on the path from leaf(key) up to the
// root, root-first — the "canonical nodes whose cover contains key" per
// spec.md §4.4.
func (sk *skeleton) ancestorPath(key int) []int32 {
	leaf := sk.p + key

	var path []int32
	for n := leaf; n >= 1; n /= 2 {
		path = append(path, int32(n))
	}

	// Reverse in place so the path reads root-first, matching the
	// "walks leaf→root" description but letting callers prefix-sum
	// from the root down.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// countOverNodes sums bucket sizes across a node list.
func (sk *skeleton) countOverNodes(nodes []int32) int {
	total := 0
	for _, n := range nodes {
		total += len(sk.buckets[n])
	}

	return total
}

// reportOverNodes concatenates bucket contents in node-list order into
// out, appending handles in bucket order within each bucket (append
// order, except where erase swap-moved an entry).
func (sk *skeleton) reportOverNodes(nodes []int32, out []Handle) []Handle {
	for _, n := range nodes {
		for _, e := range sk.buckets[n] {
			out = append(out, e.handle)
		}
	}

	return out
}

// sampleOverNodes draws k handles, each uniformly from the union of the
// buckets in nodes, independently across draws. It performs a two-level
// selection: a weighted pick of a non-empty bucket by prefix sum over
// the (at most O(log p)) node weights, then a uniform pick within that
// bucket.
func (sk *skeleton) sampleOverNodes(nodes []int32, k int, s *rng.Stream, out []Handle) ([]Handle, error) {
	if k == 0 {
		return out, nil
	}

	total := sk.countOverNodes(nodes)
	if total == 0 {
		return out, fmt.Errorf("%w", ErrEmptySample)
	}

	for i := 0; i < k; i++ {
		target := s.UniformU64(uint64(total))

		var chosen int32 = -1

		acc := uint64(0)
		for _, n := range nodes {
			sz := uint64(len(sk.buckets[n]))
			if sz == 0 {
				continue
			}

			if target < acc+sz {
				chosen = n

				break
			}

			acc += sz
		}

		bucket := sk.buckets[chosen]
		idx := s.UniformU32(uint32(len(bucket)))
		out = append(out, bucket[idx].handle)
	}

	return out, nil
}
