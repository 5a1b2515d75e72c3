package engine1_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join/engine1"
)

func overlapDataset(t *testing.T) geo.Dataset {
	t.Helper()

	r, err := geo.NewRelation([]geo.Rect{
		geo.NewRect(0, 0, 5, 5),
		geo.NewRect(1, 1, 3, 3),
	}, []uint32{0, 1})
	require.NoError(t, err)

	s, err := geo.NewRelation([]geo.Rect{
		geo.NewRect(0, 0, 2, 2),
		geo.NewRect(4, 4, 6, 6),
	}, []uint32{100, 101})
	require.NoError(t, err)

	return geo.Dataset{Name: "overlap", R: r, S: s}
}

func TestCountMaterializesExactly(t *testing.T) {
	t.Parallel()

	d := overlapDataset(t)

	eng := engine1.New()
	require.NoError(t, eng.Build(d, join.Config{Variant: join.VariantEnumSampling}))

	res, err := eng.Count(join.Config{Variant: join.VariantEnumSampling})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Value)
}

func TestCountRespectsEnumCap(t *testing.T) {
	t.Parallel()

	d := overlapDataset(t)

	eng := engine1.New()
	cfg := join.Config{Variant: join.VariantEnumSampling, EnumCap: 2}
	require.NoError(t, eng.Build(d, cfg))

	_, err := eng.Count(cfg)
	assert.ErrorIs(t, err, join.ErrEnumCapExceeded)
}

func TestSampleDrawsFromMaterializedVector(t *testing.T) {
	t.Parallel()

	d := overlapDataset(t)

	eng := engine1.New()
	cfg := join.Config{Variant: join.VariantEnumSampling, T: 20, Seed: 3}
	require.NoError(t, eng.Build(d, cfg))

	_, err := eng.Count(cfg)
	require.NoError(t, err)

	set, err := eng.Sample(cfg)
	require.NoError(t, err)
	require.Len(t, set.Pairs, 20)

	enumr, err := eng.Enumerate(cfg)
	require.NoError(t, err)

	valid := map[join.Pair]bool{}
	for {
		p, ok := enumr.Next()
		if !ok {
			break
		}

		valid[p] = true
	}

	for _, p := range set.Pairs {
		assert.True(t, valid[p])
	}
}

func TestEnumerateOrderIsDeterministic(t *testing.T) {
	t.Parallel()

	d := overlapDataset(t)

	run := func() []join.Pair {
		eng := engine1.New()
		cfg := join.Config{Variant: join.VariantEnumSampling}
		require.NoError(t, eng.Build(d, cfg))

		enumr, err := eng.Enumerate(cfg)
		require.NoError(t, err)

		var out []join.Pair

		for {
			p, ok := enumr.Next()
			if !ok {
				break
			}

			out = append(out, p)
		}

		return out
	}

	assert.Equal(t, run(), run())
}
