// Package sweep provides the event stream (spec component C3) and the
// shared sweep context (C7): the sorted event list, the dense Start-id
// map, the rank-compressed y-domain tables, and a pair of per-side
// active indices. It is built once per (dataset) and reused, via Reset,
// across Count, Sample, and Enumerate passes by every framework driver.
package sweep

import (
	"sort"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
)

// StartInfo is the per-Start-event record pass 1 and pass 2 share: the
// rectangle's side/index/id, and its position in the compressed
// y-domain. Immutable after Build.
type StartInfo struct {
	Side      geo.Side
	Index     uint32
	Id        uint32
	YloRank   int
	YhiLbRank int
}

// Context is the sweep substrate: an immutable event stream plus two
// mutable active indices that every framework driver inserts into and
// erases from while walking that stream.
type Context struct {
	events         []Event
	startIDOfEvent []int32 // -1 for End events
	startInfo      []StartInfo
	startIDByIndex [2][]int32 // [side][rectangle index] -> start-id

	yDomainSize int

	active [2]*activeindex.Index

	tie TieBreak
}

// Build constructs a Context from a validated dataset. Build is
// idempotent: calling it again (after Reset) reconstructs the same
// event list, y-rank tables, and index skeletons from scratch, which is
// what gives Reset;Build;Reset;Build its idempotence (spec.md §8).
func Build(d geo.Dataset, tie TieBreak) *Context {
	events := buildEvents(d)

	sort.Slice(events, func(i, j int) bool { return less(events[i], events[j], tie) })

	ctx := &Context{
		events: events,
		tie:    tie,
	}

	ctx.assignStartIDs()
	ctx.buildYDomain(d)

	rCap := d.R.Len()
	sCap := d.S.Len()
	ctx.active[geo.SideR] = activeindex.New(ctx.yDomainSize, rCap)
	ctx.active[geo.SideS] = activeindex.New(ctx.yDomainSize, sCap)

	return ctx
}

func (ctx *Context) assignStartIDs() {
	ctx.startIDOfEvent = make([]int32, len(ctx.events))

	maxIndex := [2]uint32{}
	for _, e := range ctx.events {
		if e.Index+1 > maxIndex[e.Side] {
			maxIndex[e.Side] = e.Index + 1
		}
	}

	ctx.startIDByIndex[geo.SideR] = make([]int32, maxIndex[geo.SideR])
	ctx.startIDByIndex[geo.SideS] = make([]int32, maxIndex[geo.SideS])

	next := int32(0)

	for pos, e := range ctx.events {
		if e.Kind != KindStart {
			ctx.startIDOfEvent[pos] = -1

			continue
		}

		sid := next
		next++

		ctx.startIDOfEvent[pos] = sid
		ctx.startIDByIndex[e.Side][e.Index] = sid
	}

	ctx.startInfo = make([]StartInfo, next)

	for pos, e := range ctx.events {
		sid := ctx.startIDOfEvent[pos]
		if sid < 0 {
			continue
		}

		ctx.startInfo[sid] = StartInfo{Side: e.Side, Index: e.Index, Id: e.Id}
	}
}

func (ctx *Context) buildYDomain(d geo.Dataset) {
	var ys []geo.Coord

	for _, side := range [2]geo.Side{geo.SideR, geo.SideS} {
		for _, box := range d.Relation(side).Boxes {
			ys = append(ys, box.Rect.Lo[1])
		}
	}

	sort.Float64s(ys)

	uniq := ys[:0:0]

	for i, y := range ys {
		if i == 0 || y != uniq[len(uniq)-1] {
			uniq = append(uniq, y)
		}
	}

	ctx.yDomainSize = len(uniq)

	for sid := range ctx.startInfo {
		info := &ctx.startInfo[sid]
		box := d.Relation(info.Side).Boxes[info.Index]

		info.YloRank = lowerBound(uniq, box.Rect.Lo[1])
		info.YhiLbRank = lowerBound(uniq, box.Rect.Hi[1])
	}
}

// lowerBound returns the first position in ys whose value is >= v, in
// [0, len(ys)] — the half-open upper rank spec.md §3 defines for hi[1].
func lowerBound(ys []geo.Coord, v geo.Coord) int {
	return sort.Search(len(ys), func(i int) bool { return ys[i] >= v })
}

// NumEvents returns the total number of Start+End events.
func (ctx *Context) NumEvents() int {
	return len(ctx.events)
}

// NumStarts returns E, the number of Start events (== |R| + |S|).
func (ctx *Context) NumStarts() int {
	return len(ctx.startInfo)
}

// YDomainSize returns m, the size of the compressed y-domain.
func (ctx *Context) YDomainSize() int {
	return ctx.yDomainSize
}

// EventAt returns the pos-th event in the fixed total order.
func (ctx *Context) EventAt(pos int) Event {
	return ctx.events[pos]
}

// StartIDAt returns the dense Start-id of the pos-th event, or -1 if it
// is an End event.
func (ctx *Context) StartIDAt(pos int) int32 {
	return ctx.startIDOfEvent[pos]
}

// Info returns the Start-event record for startID.
func (ctx *Context) Info(startID int32) StartInfo {
	return ctx.startInfo[startID]
}

// StartIDFor returns the start-id of the rectangle at (side, index) —
// used when an End event needs to erase the matching handle.
func (ctx *Context) StartIDFor(side geo.Side, index uint32) int32 {
	return ctx.startIDByIndex[side][index]
}

// Active returns the mutable active index for side.
func (ctx *Context) Active(side geo.Side) *activeindex.Index {
	return ctx.active[side]
}

// Reset empties both active indices, ready for the next pass over the
// same immutable event stream. Per spec.md §3, every Reset call must
// find the active sets already back at zero handles from the previous
// pass; Reset itself is unconditional and idempotent.
func (ctx *Context) Reset() {
	ctx.active[geo.SideR].ResetActive()
	ctx.active[geo.SideS].ResetActive()
}
