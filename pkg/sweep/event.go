package sweep

import "github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"

// Kind distinguishes the two events a rectangle contributes to the
// sweep. End sorts before Start at an equal x-coordinate — the
// half-open-rectangle policy from spec.md §4.3 that is non-negotiable:
// it is what makes touching rectangles (r.hi[0] == s.lo[0]) report zero
// join pairs.
type Kind uint8

// Event kinds, ordered so that End < Start numerically.
const (
	KindEnd Kind = iota
	KindStart
)

// TieBreak selects which side sorts first among events that are
// otherwise tied (same x, same kind, same id). Per spec.md §9 this
// never affects |J| or the sampling distribution — it only decides
// which rectangle is "the query" at a coincident lo[0]. Fixed across a
// run so SampleSet reproducibility tests can pin it.
type TieBreak uint8

// Tie-break policies.
const (
	// RBeforeS is the default: at a tie, R-side events sort first.
	RBeforeS TieBreak = iota
	SBeforeR
)

// Event is one Start or End marker on the sweep axis (axis 0).
type Event struct {
	X     geo.Coord
	Kind  Kind
	Side  geo.Side
	Id    uint32
	Index uint32
}

// less implements the fixed total order from spec.md §4.3:
// (x asc, kind asc [End < Start], id asc, side by tie-break, index asc).
func less(a, b Event, tie TieBreak) bool {
	if a.X != b.X {
		return a.X < b.X
	}

	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}

	if a.Id != b.Id {
		return a.Id < b.Id
	}

	if a.Side != b.Side {
		if tie == RBeforeS {
			return a.Side == geo.SideR
		}

		return a.Side == geo.SideS
	}

	return a.Index < b.Index
}

// buildEvents emits one Start and one End event per rectangle in both
// relations. Rectangles that are empty on the sweep axis are skipped
// defensively; Build's own Validate call should already have rejected
// them (spec.md §3: every rectangle proper).
func buildEvents(d geo.Dataset) []Event {
	events := make([]Event, 0, 2*(d.R.Len()+d.S.Len()))

	for _, side := range [2]geo.Side{geo.SideR, geo.SideS} {
		for _, box := range d.Relation(side).Boxes {
			if !(box.Rect.Lo[0] < box.Rect.Hi[0]) {
				continue
			}

			events = append(events,
				Event{X: box.Rect.Lo[0], Kind: KindStart, Side: side, Id: box.Id, Index: box.Index},
				Event{X: box.Rect.Hi[0], Kind: KindEnd, Side: side, Id: box.Id, Index: box.Index},
			)
		}
	}

	return events
}
