// Package alias implements Vose's alias method: a discrete sampler that
// draws an index from a fixed set of non-negative weights in O(1) time
// after an O(n) build. It underlies the slot plan's event-id draws
// (spec component C2); Framework I's index draw uses rng.Stream.UniformU64
// directly instead.
package alias

import (
	"errors"
	"fmt"
	"math"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

// ErrBadWeight is returned when a weight is NaN, infinite, or negative.
var ErrBadWeight = errors.New("alias: bad weight")

// Table is a built alias table over a fixed weight vector. It does not
// retain the original probabilities; callers that need them should keep
// the weight slice they built it from.
type Table struct {
	prob  []float64
	alias []int
	n     int
	// uniform is true when the total weight was zero; sample then
	// behaves as uniform-over-indices, per the alias contract.
	uniform bool
}

// Build constructs a Table from non-negative, finite weights. Returns
// ErrBadWeight if any weight is NaN, infinite, or negative. If the sum of
// weights is exactly zero, the table falls back to a uniform distribution
// over all n indices (n must be > 0 in that case to be useful, but Build
// itself accepts n == 0 and simply produces an empty, unusable table).
func Build(weights []float64) (*Table, error) {
	n := len(weights)

	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, fmt.Errorf("%w: %v", ErrBadWeight, w)
		}
	}

	t := &Table{
		prob:  make([]float64, n),
		alias: make([]int, n),
		n:     n,
	}

	if n == 0 {
		return t, nil
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}

	if total == 0 {
		t.uniform = true

		return t, nil
	}

	scaled := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		scaled[i] = w * float64(n) / total
		if scaled[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		t.prob[s] = scaled[s]
		t.alias[s] = l

		scaled[l] = scaled[l] + scaled[s] - 1
		if scaled[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}

	for _, l := range large {
		t.prob[l] = 1
	}

	for _, s := range small {
		t.prob[s] = 1
	}

	return t, nil
}

// BuildU64 is a convenience wrapper for integer weight vectors (the
// per-event total weights w_total are u64 counts, never fractional).
func BuildU64(weights []uint64) (*Table, error) {
	fw := make([]float64, len(weights))
	for i, w := range weights {
		fw[i] = float64(w)
	}

	return Build(fw)
}

// Len returns the number of indices the table was built over.
func (t *Table) Len() int {
	return t.n
}

// Sample draws one index with probability exactly w_i/sum(w) (or
// uniformly, if the table fell back due to a zero total). Uses two RNG
// draws, a bucket index and a threshold comparison, per the alias
// method's O(1) draw contract; the uniform fallback uses only the bucket
// index draw.
func (t *Table) Sample(s *rng.Stream) int {
	i := int(s.UniformU32(uint32(t.n)))

	if t.uniform {
		return i
	}

	if s.NextF64() < t.prob[i] {
		return i
	}

	return t.alias[i]
}
