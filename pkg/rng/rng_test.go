package rng_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

func TestNewDeterministic(t *testing.T) {
	t.Parallel()

	a := rng.New(42)
	b := rng.New(42)

	for i := 0; i < 64; i++ {
		require.Equal(t, a.NextU64(), b.NextU64())
	}
}

func TestNextF64Range(t *testing.T) {
	t.Parallel()

	s := rng.New(7)

	for i := 0; i < 10_000; i++ {
		v := s.NextF64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestUniformU64InRange(t *testing.T) {
	t.Parallel()

	s := rng.New(1234)

	bounds := []uint64{1, 2, 3, 7, 31, 1 << 20, 1<<64 - 1}
	for _, bound := range bounds {
		for i := 0; i < 1000; i++ {
			v := s.UniformU64(bound)
			assert.Less(t, v, bound)
		}
	}
}

func TestUniformU64PanicsOnZeroBound(t *testing.T) {
	t.Parallel()

	s := rng.New(1)
	assert.Panics(t, func() { s.UniformU64(0) })
}

func TestUniformU64PowerOfTwoCoversFullRange(t *testing.T) {
	t.Parallel()

	s := rng.New(99)
	seen := make(map[uint64]bool)

	for i := 0; i < 100_000; i++ {
		seen[s.UniformU64(8)] = true
	}

	assert.Len(t, seen, 8)
}

func TestDeriveSeedDeterministic(t *testing.T) {
	t.Parallel()

	a := rng.DeriveSeed(42, 1, 2, 3)
	b := rng.DeriveSeed(42, 1, 2, 3)
	assert.Equal(t, a, b)
}

func TestDeriveSeedVariesWithSalt(t *testing.T) {
	t.Parallel()

	base := rng.DeriveSeed(42, 1)
	other := rng.DeriveSeed(42, 2)
	assert.NotEqual(t, base, other)
}

func TestDeriveStreamIndependence(t *testing.T) {
	t.Parallel()

	countStream := rng.DeriveStream(42, 1)
	sampleStream := rng.DeriveStream(42, 2)

	var same = true
	for i := 0; i < 16; i++ {
		if countStream.NextU64() != sampleStream.NextU64() {
			same = false
		}
	}

	assert.False(t, same, "derived streams should diverge immediately")
}
