package engine3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonTailScoreMonotoneInR(t *testing.T) {
	t.Parallel()

	for _, mu := range []float64{0.5, 3, 10, 50, 200} {
		prev := poissonTailScore(mu, 1)

		for r := 2; r <= 40; r++ {
			cur := poissonTailScore(mu, r)
			assert.LessOrEqualf(t, cur, prev, "mu=%v r=%d", mu, r)
			prev = cur
		}
	}
}

func TestPoissonTailScoreBoundaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, poissonTailScore(5, 0))
	assert.Equal(t, 0.0, poissonTailScore(0, 3))
	assert.InDelta(t, 1.0, poissonTailScore(0, 0), 1e-9)
}
