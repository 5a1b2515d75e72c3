// Package geo defines the rectangle join's data model: a scalar
// coordinate type, half-open axis-aligned rectangles, relations of
// stably-identified rectangles, and the (R, S) dataset pair the three
// framework drivers operate on.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Coord is the scalar coordinate type. Any finite float64 is legal; NaN
// is a precondition violation and rejected by validation, never by the
// type system.
type Coord = float64

// Dims is the number of axes. The substrate generalizes, but every
// concrete type and algorithm in this module is written for Dims == 2.
const Dims = 2

// Sentinel validation errors for [Relation.Validate] and [Dataset.Validate].
var (
	ErrNonFiniteCoord  = errors.New("geo: non-finite coordinate")
	ErrImproperRect    = errors.New("geo: rectangle not proper (lo must be strictly less than hi on every axis)")
	ErrDuplicateID     = errors.New("geo: duplicate rectangle id within relation")
	ErrRelationTooLarge = errors.New("geo: relation size does not fit in uint32")
)

// Rect is a half-open axis-aligned rectangle: it owns Lo on every axis
// and excludes Hi. Two rects intersect iff, on each axis, each one's Lo
// is strictly less than the other's Hi.
type Rect struct {
	Lo [Dims]Coord
	Hi [Dims]Coord
}

// NewRect builds a Rect from explicit bounds.
func NewRect(loX, loY, hiX, hiY Coord) Rect {
	return Rect{Lo: [Dims]Coord{loX, loY}, Hi: [Dims]Coord{hiX, hiY}}
}

// Proper reports whether the rectangle has strictly positive width on
// every axis.
func (r Rect) Proper() bool {
	for a := 0; a < Dims; a++ {
		if !(r.Lo[a] < r.Hi[a]) {
			return false
		}
	}

	return true
}

// Finite reports whether every coordinate is a finite float64.
func (r Rect) Finite() bool {
	for a := 0; a < Dims; a++ {
		if math.IsNaN(r.Lo[a]) || math.IsInf(r.Lo[a], 0) {
			return false
		}

		if math.IsNaN(r.Hi[a]) || math.IsInf(r.Hi[a], 0) {
			return false
		}
	}

	return true
}

// Intersects reports whether r and other overlap under half-open
// semantics: on every axis, each rectangle's lo must be strictly less
// than the other's hi. A rectangle ending exactly where another begins
// does not intersect it.
func (r Rect) Intersects(other Rect) bool {
	for a := 0; a < Dims; a++ {
		if !(r.Lo[a] < other.Hi[a]) || !(other.Lo[a] < r.Hi[a]) {
			return false
		}
	}

	return true
}

// Box is one rectangle inside a [Relation]: its geometry, its stable
// external Id, and its position (Index) within the relation.
type Box struct {
	Rect  Rect
	Id    uint32
	Index uint32
}

// Relation is an ordered, stably-identified sequence of rectangles.
type Relation struct {
	Boxes []Box
}

// NewRelation builds a Relation from rectangles, assigning Index
// positionally and Id from the supplied ids slice (ids must be the same
// length as rects; this mirrors the loader's responsibility in spec.md §3).
func NewRelation(rects []Rect, ids []uint32) (Relation, error) {
	if len(rects) != len(ids) {
		return Relation{}, fmt.Errorf("geo: rects/ids length mismatch: %d vs %d", len(rects), len(ids))
	}

	boxes := make([]Box, len(rects))
	for i, r := range rects {
		boxes[i] = Box{Rect: r, Id: ids[i], Index: uint32(i)}
	}

	return Relation{Boxes: boxes}, nil
}

// Len returns the number of rectangles in the relation.
func (rel Relation) Len() int {
	return len(rel.Boxes)
}

// Validate checks the Relation invariants from spec.md §3: every
// rectangle proper and finite, and index->Id injective within the
// relation.
func (rel Relation) Validate() error {
	if len(rel.Boxes) > math.MaxUint32 {
		return ErrRelationTooLarge
	}

	seen := make(map[uint32]struct{}, len(rel.Boxes))

	for _, b := range rel.Boxes {
		if !b.Rect.Finite() {
			return fmt.Errorf("%w: box id=%d", ErrNonFiniteCoord, b.Id)
		}

		if !b.Rect.Proper() {
			return fmt.Errorf("%w: box id=%d", ErrImproperRect, b.Id)
		}

		if _, dup := seen[b.Id]; dup {
			return fmt.Errorf("%w: id=%d", ErrDuplicateID, b.Id)
		}

		seen[b.Id] = struct{}{}
	}

	return nil
}

// Dataset is a named pair of relations, (R, S), the unit the three
// framework drivers join.
type Dataset struct {
	Name string
	R    Relation
	S    Relation
}

// Validate checks both relations and that |R| + |S| fits in a uint32,
// per the "Dataset input" contract in spec.md §6.
func (d Dataset) Validate() error {
	if err := d.R.Validate(); err != nil {
		return fmt.Errorf("relation R: %w", err)
	}

	if err := d.S.Validate(); err != nil {
		return fmt.Errorf("relation S: %w", err)
	}

	total := uint64(d.R.Len()) + uint64(d.S.Len())
	if total > math.MaxUint32 {
		return ErrRelationTooLarge
	}

	return nil
}

// Side identifies which relation a rectangle belongs to during a sweep.
type Side uint8

// Side values.
const (
	SideR Side = iota
	SideS
)

// String renders the side as "R" or "S", mainly for logging/debug output.
func (s Side) String() string {
	if s == SideR {
		return "R"
	}

	return "S"
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideR {
		return SideS
	}

	return SideR
}

// Relation returns the side's relation out of the dataset.
func (d Dataset) Relation(side Side) Relation {
	if side == SideR {
		return d.R
	}

	return d.S
}

// DatasetSource is the boundary contract external collaborators (file
// loaders, synthetic generators) implement to hand a Dataset to the
// core. Loading, parsing, and generation are explicitly out of scope for
// this module (spec.md §1); DatasetSource only pins the interface.
type DatasetSource interface {
	Load(ctx context.Context) (Dataset, error)
}
