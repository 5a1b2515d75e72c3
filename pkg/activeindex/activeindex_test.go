package activeindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

// Three active rectangles over a y-rank domain [0, 5):
//   h0: ylo=0, yhi_lb=4  -> interval [0,4)
//   h1: ylo=1, yhi_lb=3  -> interval [1,3)
//   h2: ylo=2, yhi_lb=5  -> interval [2,5)
func buildFixture() *activeindex.Index {
	idx := activeindex.New(5, 4)
	idx.Insert(0, 0, 4)
	idx.Insert(1, 1, 3)
	idx.Insert(2, 2, 5)

	return idx
}

func TestPatternAContainment(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	// Query with q_ylo = 1: h0 ([0,4)) and h1 ([1,3)) contain rank 1.
	assert.Equal(t, 2, idx.CountA(1))
}

func TestPatternBStrictlyAbove(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	// Query with q_ylo=0, q_yhi=5: Pattern B looks in (0,5) exclusive of 0.
	// h1 (ylo=1) and h2 (ylo=2) qualify; h0 (ylo=0) does not (not strictly above).
	assert.Equal(t, 2, idx.CountB(0, 5))
}

func TestPartitionHasNoOverlap(t *testing.T) {
	t.Parallel()

	idx := buildFixture()

	a := idx.ReportA(1, nil)
	b := idx.ReportB(1, 4, nil)

	seen := map[activeindex.Handle]bool{}
	for _, h := range a {
		seen[h] = true
	}

	for _, h := range b {
		assert.False(t, seen[h], "handle %d reported by both patterns", h)
	}
}

func TestEraseRemovesFromBothTrees(t *testing.T) {
	t.Parallel()

	idx := buildFixture()
	idx.Erase(0)

	assert.Equal(t, 1, idx.CountA(1)) // only h1 left containing rank 1
}

func TestSampleAUniform(t *testing.T) {
	t.Parallel()

	idx := activeindex.New(5, 4)
	idx.Insert(0, 0, 5)
	idx.Insert(1, 0, 5)

	s := rng.New(11)
	counts := map[activeindex.Handle]int{}

	const draws = 20_000

	out := make([]activeindex.Handle, 0, 1)
	for i := 0; i < draws; i++ {
		out = out[:0]

		var err error
		out, err = idx.SampleA(0, 1, s, out)
		require.NoError(t, err)
		counts[out[0]]++
	}

	assert.InDelta(t, draws/2, counts[0], float64(draws)*0.05)
	assert.InDelta(t, draws/2, counts[1], float64(draws)*0.05)
}

func TestResetActiveEmpties(t *testing.T) {
	t.Parallel()

	idx := buildFixture()
	idx.ResetActive()

	assert.Equal(t, 0, idx.CountA(1))
	assert.Equal(t, 0, idx.CountB(0, 5))
}
