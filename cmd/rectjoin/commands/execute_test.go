package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine2"
)

func tinyDataset(t *testing.T) geo.Dataset {
	t.Helper()

	r, err := geo.NewRelation([]geo.Rect{geo.NewRect(0, 0, 1, 1)}, []uint32{1})
	require.NoError(t, err)

	s, err := geo.NewRelation([]geo.Rect{geo.NewRect(0.5, 0.5, 1.5, 1.5)}, []uint32{2})
	require.NoError(t, err)

	return geo.Dataset{Name: "tiny", R: r, S: s}
}

func TestExecuteRunsAllPhases(t *testing.T) {
	t.Parallel()

	dataset := tinyDataset(t)

	cfg := join.Config{Variant: join.VariantSampling, T: 5, Seed: 42}

	result, sampleSet, elapsed, err := execute(engine2.New(), dataset, cfg)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), result.Value)
	assert.True(t, result.Exact)
	assert.Len(t, sampleSet.Pairs, 5)
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))

	for _, p := range sampleSet.Pairs {
		assert.Equal(t, uint32(1), p.RId)
		assert.Equal(t, uint32(2), p.SId)
	}
}
