package engine3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/internal/oracle"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine2"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine3"
)

func mediumDataset(t *testing.T) geo.Dataset {
	t.Helper()

	rRects := make([]geo.Rect, 0, 20)
	rIds := make([]uint32, 0, 20)

	for i := 0; i < 20; i++ {
		x := float64(i)
		rRects = append(rRects, geo.NewRect(x, 0, x+3, 3))
		rIds = append(rIds, uint32(i))
	}

	sRects := make([]geo.Rect, 0, 15)
	sIds := make([]uint32, 0, 15)

	for i := 0; i < 15; i++ {
		x := float64(i) * 1.5
		sRects = append(sRects, geo.NewRect(x, 1, x+2, 2))
		sIds = append(sIds, uint32(1000+i))
	}

	r, err := geo.NewRelation(rRects, rIds)
	require.NoError(t, err)

	s, err := geo.NewRelation(sRects, sIds)
	require.NoError(t, err)

	return geo.Dataset{Name: "medium", R: r, S: s}
}

func TestEngine3CountMatchesBruteForce(t *testing.T) {
	t.Parallel()

	d := mediumDataset(t)
	cfg := join.Config{Variant: join.VariantAdaptive, T: 100, Seed: 5, Budget: 200, WSmall: 4}

	eng := engine3.New()
	require.NoError(t, eng.Build(d, cfg))

	res, err := eng.Count(cfg)
	require.NoError(t, err)
	assert.Equal(t, oracle.Count(d), res.Value)
}

func TestEngine3BudgetZeroMatchesEngine2ByteForByte(t *testing.T) {
	t.Parallel()

	d := mediumDataset(t)
	cfg := join.Config{Variant: join.VariantAdaptive, T: 300, Seed: 99, Budget: 0}

	eng3 := engine3.New()
	require.NoError(t, eng3.Build(d, cfg))

	_, err := eng3.Count(cfg)
	require.NoError(t, err)

	set3, err := eng3.Sample(cfg)
	require.NoError(t, err)

	eng2 := engine2.New()
	cfg2 := join.Config{Variant: join.VariantSampling, T: cfg.T, Seed: cfg.Seed}
	require.NoError(t, eng2.Build(d, cfg2))

	_, err = eng2.Count(cfg2)
	require.NoError(t, err)

	set2, err := eng2.Sample(cfg2)
	require.NoError(t, err)

	assert.Equal(t, set2.Pairs, set3.Pairs)
}

func TestEngine3SampleDrawsOnlyRealPairsWithCaching(t *testing.T) {
	t.Parallel()

	d := mediumDataset(t)
	cfg := join.Config{Variant: join.VariantAdaptive, T: 400, Seed: 11, Budget: 500, WSmall: 6}

	eng := engine3.New()
	require.NoError(t, eng.Build(d, cfg))

	_, err := eng.Count(cfg)
	require.NoError(t, err)

	set, err := eng.Sample(cfg)
	require.NoError(t, err)
	require.Len(t, set.Pairs, int(cfg.T))

	valid := oracle.Set(d)

	for _, p := range set.Pairs {
		assert.True(t, valid[oracle.Pair{RId: p.RId, SId: p.SId}], "sampled pair %+v is not a real intersection", p)
	}
}
