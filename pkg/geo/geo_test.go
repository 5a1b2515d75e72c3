package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
)

func TestRectIntersectsHalfOpen(t *testing.T) {
	t.Parallel()

	a := geo.NewRect(0, 0, 1, 1)
	b := geo.NewRect(1, 0, 2, 1)

	assert.False(t, a.Intersects(b), "touching rectangles must not intersect")
	assert.False(t, b.Intersects(a))
}

func TestRectIntersectsOverlap(t *testing.T) {
	t.Parallel()

	a := geo.NewRect(0, 0, 1, 1)
	b := geo.NewRect(0.5, 0.5, 1.5, 1.5)

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
}

func TestRectProper(t *testing.T) {
	t.Parallel()

	assert.True(t, geo.NewRect(0, 0, 1, 1).Proper())
	assert.False(t, geo.NewRect(1, 0, 1, 1).Proper(), "zero width on axis 0")
	assert.False(t, geo.NewRect(0, 1, 1, 1).Proper(), "zero width on axis 1")
}

func TestRectFinite(t *testing.T) {
	t.Parallel()

	assert.True(t, geo.NewRect(0, 0, 1, 1).Finite())
	assert.False(t, geo.NewRect(math.NaN(), 0, 1, 1).Finite())
	assert.False(t, geo.NewRect(0, 0, math.Inf(1), 1).Finite())
}

func TestRelationValidateRejectsImproperRect(t *testing.T) {
	t.Parallel()

	rel, err := geo.NewRelation([]geo.Rect{geo.NewRect(0, 0, 0, 1)}, []uint32{1})
	require.NoError(t, err)

	err = rel.Validate()
	require.ErrorIs(t, err, geo.ErrImproperRect)
}

func TestRelationValidateRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	rel, err := geo.NewRelation([]geo.Rect{
		geo.NewRect(0, 0, 1, 1),
		geo.NewRect(2, 2, 3, 3),
	}, []uint32{5, 5})
	require.NoError(t, err)

	err = rel.Validate()
	require.ErrorIs(t, err, geo.ErrDuplicateID)
}

func TestDatasetValidateOK(t *testing.T) {
	t.Parallel()

	r, err := geo.NewRelation([]geo.Rect{geo.NewRect(0, 0, 1, 1)}, []uint32{0})
	require.NoError(t, err)

	s, err := geo.NewRelation([]geo.Rect{geo.NewRect(0.5, 0.5, 1.5, 1.5)}, []uint32{0})
	require.NoError(t, err)

	d := geo.Dataset{Name: "tiny", R: r, S: s}
	assert.NoError(t, d.Validate())
}

func TestSideOtherAndString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, geo.SideS, geo.SideR.Other())
	assert.Equal(t, geo.SideR, geo.SideS.Other())
	assert.Equal(t, "R", geo.SideR.String())
	assert.Equal(t, "S", geo.SideS.String())
}
