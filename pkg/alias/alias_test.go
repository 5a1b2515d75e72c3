package alias_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/alias"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

func TestBuildRejectsBadWeights(t *testing.T) {
	t.Parallel()

	cases := [][]float64{
		{1, math.NaN()},
		{1, math.Inf(1)},
		{1, -1},
	}

	for _, weights := range cases {
		_, err := alias.Build(weights)
		require.ErrorIs(t, err, alias.ErrBadWeight)
	}
}

func TestBuildZeroSumIsUniform(t *testing.T) {
	t.Parallel()

	tbl, err := alias.Build([]float64{0, 0, 0, 0})
	require.NoError(t, err)

	s := rng.New(1)
	counts := make([]int, 4)

	for i := 0; i < 40_000; i++ {
		counts[tbl.Sample(s)]++
	}

	for _, c := range counts {
		assert.InDelta(t, 10_000, c, 1500)
	}
}

func TestSampleMatchesWeightedDistribution(t *testing.T) {
	t.Parallel()

	weights := []float64{1, 2, 3, 4}
	tbl, err := alias.Build(weights)
	require.NoError(t, err)

	s := rng.New(2024)
	counts := make([]int, len(weights))

	const draws = 200_000
	for i := 0; i < draws; i++ {
		counts[tbl.Sample(s)]++
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}

	for i, w := range weights {
		expected := draws * w / total
		assert.InDelta(t, expected, float64(counts[i]), expected*0.05+200)
	}
}

func TestBuildU64(t *testing.T) {
	t.Parallel()

	tbl, err := alias.BuildU64([]uint64{5, 0, 5})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
}

func TestSingleIndexAlwaysChosen(t *testing.T) {
	t.Parallel()

	tbl, err := alias.Build([]float64{42})
	require.NoError(t, err)

	s := rng.New(3)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, tbl.Sample(s))
	}
}
