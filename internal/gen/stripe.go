// Package gen builds synthetic test datasets with a controlled exact
// join cardinality, grounded on the original engine's
// stripe_ctrl_alpha generator: S is laid out as non-overlapping strips
// along one control axis, and each R box is given a degree d_i (how
// many consecutive strips it spans) drawn from a random bounded
// composition summing to the target |J|. Every other axis is a wide
// "core" interval shared by every box, so intersection is governed
// entirely by the control axis.
package gen

import (
	"errors"
	"fmt"
	"math"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

// Sentinel errors for StripeSpec.validate.
var (
	ErrInvalidCounts   = errors.New("gen: n_r and n_s must both be positive")
	ErrInvalidDomain   = errors.New("gen: domain_hi must be greater than domain_lo")
	ErrInvalidCore     = errors.New("gen: core_lo/core_hi must satisfy 0 <= lo < hi <= 1")
	ErrInvalidGapFactor = errors.New("gen: gap_factor must be in (0, 1)")
	ErrInvalidDelta    = errors.New("gen: delta_factor must be in (0, 0.5)")
	ErrInfeasibleK     = errors.New("gen: target k exceeds n_r*n_s")
	ErrGapTooSmall     = errors.New("gen: gap too small to place a degree-0 box safely")
)

// StripeSpec parameterizes StripeDataset. K is the exact number of
// intersecting pairs the returned dataset will contain.
type StripeSpec struct {
	NR, NS            uint64
	K                 uint64
	Seed              uint64
	DomainLo, DomainHi float64
	CoreLoFrac, CoreHiFrac float64
	GapFactor         float64
	DeltaFactor       float64
	ShuffleStrips     bool
}

// DefaultStripeSpec returns the reference generator's default
// parameters for the given sizes, seed, and target cardinality.
func DefaultStripeSpec(nr, ns, k, seed uint64) StripeSpec {
	return StripeSpec{
		NR: nr, NS: ns, K: k, Seed: seed,
		DomainLo: 0, DomainHi: 1,
		CoreLoFrac: 0.45, CoreHiFrac: 0.55,
		GapFactor:   0.1,
		DeltaFactor: 0.25,
		ShuffleStrips: true,
	}
}

func (spec StripeSpec) validate() error {
	if spec.NR == 0 || spec.NS == 0 {
		return ErrInvalidCounts
	}

	if !(spec.DomainHi > spec.DomainLo) {
		return ErrInvalidDomain
	}

	if !(spec.CoreLoFrac >= 0 && spec.CoreHiFrac <= 1 && spec.CoreLoFrac < spec.CoreHiFrac) {
		return ErrInvalidCore
	}

	if !(spec.GapFactor > 0 && spec.GapFactor < 1) {
		return ErrInvalidGapFactor
	}

	if !(spec.DeltaFactor > 0 && spec.DeltaFactor < 0.5) {
		return ErrInvalidDelta
	}

	maxK := spec.NR * spec.NS
	if spec.NR != 0 && maxK/spec.NR != spec.NS {
		return fmt.Errorf("%w: n_r*n_s overflows uint64", ErrInfeasibleK)
	}

	if spec.K > maxK {
		return ErrInfeasibleK
	}

	return nil
}

// StripeDataset builds a dataset whose exact number of intersecting
// (r, s) pairs equals spec.K, deterministically from spec.Seed. The
// control axis is always axis 1 (y); every box shares a wide random
// interval on axis 0 (x) so overlap there never constrains a pair.
func StripeDataset(spec StripeSpec) (geo.Dataset, error) {
	if err := spec.validate(); err != nil {
		return geo.Dataset{}, err
	}

	stream := rng.New(spec.Seed)

	l := spec.DomainHi - spec.DomainLo
	coreLo := spec.DomainLo + spec.CoreLoFrac*l
	coreHi := spec.DomainLo + spec.CoreHiFrac*l

	g := (spec.GapFactor * l) / float64(spec.NS+1)
	if !(float64(spec.NS+1)*g < l) {
		return geo.Dataset{}, ErrGapTooSmall
	}

	h := (l - float64(spec.NS+1)*g) / float64(spec.NS)
	if !(h > 0) {
		return geo.Dataset{}, ErrGapTooSmall
	}

	delta := math.Min(g, h) * spec.DeltaFactor
	if !(delta > 0 && delta < 0.5*g && delta < 0.5*h) {
		return geo.Dataset{}, ErrGapTooSmall
	}

	degrees, err := randomBoundedComposition(spec.K, spec.NR, spec.NS, stream)
	if err != nil {
		return geo.Dataset{}, err
	}

	stripLo := make([]float64, spec.NS)
	stripHi := make([]float64, spec.NS)

	for j := uint64(0); j < spec.NS; j++ {
		lo := spec.DomainLo + g + float64(j)*(h+g)
		stripLo[j] = lo
		stripHi[j] = lo + h
	}

	uniform := func(lo, hi float64) float64 { return lo + stream.NextF64()*(hi-lo) }

	sRects := make([]geo.Rect, spec.NS)
	sIds := make([]uint32, spec.NS)

	for j := uint64(0); j < spec.NS; j++ {
		x0, x1 := uniform(spec.DomainLo, coreLo), uniform(coreHi, spec.DomainHi)
		sRects[j] = geo.NewRect(x0, stripLo[j], x1, stripHi[j])
		sIds[j] = uint32(j)
	}

	if spec.ShuffleStrips {
		fisherYatesShuffle(sRects, stream)
	}

	rRects := make([]geo.Rect, spec.NR)
	rIds := make([]uint32, spec.NR)

	for i := uint64(0); i < spec.NR; i++ {
		x0, x1 := uniform(spec.DomainLo, coreLo), uniform(coreHi, spec.DomainHi)

		di := uint64(degrees[i])

		var y0, y1 float64

		if di == 0 {
			u := stream.UniformU64(spec.NS + 1)

			var gapLo, gapHi float64

			switch {
			case u == 0:
				gapLo, gapHi = spec.DomainLo, spec.DomainLo+g
			case u == spec.NS:
				gapLo, gapHi = spec.DomainHi-g, spec.DomainHi
			default:
				gapLo, gapHi = stripHi[u-1], stripLo[u]
			}

			loY := gapLo + delta
			hiY := gapHi - 2*delta

			if !(hiY > loY) {
				return geo.Dataset{}, ErrGapTooSmall
			}

			y0 = uniform(loY, hiY)
			y1 = y0 + delta
		} else {
			maxStart := spec.NS - di
			s := stream.UniformU64(maxStart + 1)
			e := s + di - 1
			y0 = stripLo[s] + delta
			y1 = stripHi[e] - delta

			if !(y1 > y0) {
				return geo.Dataset{}, ErrGapTooSmall
			}
		}

		rRects[i] = geo.NewRect(x0, y0, x1, y1)
		rIds[i] = uint32(i)
	}

	r, err := geo.NewRelation(rRects, rIds)
	if err != nil {
		return geo.Dataset{}, fmt.Errorf("gen: build R relation: %w", err)
	}

	s, err := geo.NewRelation(sRects, sIds)
	if err != nil {
		return geo.Dataset{}, fmt.Errorf("gen: build S relation: %w", err)
	}

	return geo.Dataset{Name: "stripe_ctrl_alpha", R: r, S: s}, nil
}

// fisherYatesShuffle permutes rects in place using stream's draws. The
// ids slice is not permuted, so id j stays at position j and receives
// whichever strip lands there; every box still spans the shared x-core.
func fisherYatesShuffle(rects []geo.Rect, stream *rng.Stream) {
	for i := len(rects) - 1; i > 0; i-- {
		j := int(stream.UniformU64(uint64(i + 1)))
		rects[i], rects[j] = rects[j], rects[i]
	}
}

// randomBoundedComposition samples (d_0..d_{nr-1}) with 0<=d_i<=ns and
// sum d_i == k, sequentially drawing each d_i uniformly from the range
// still feasible given what remains.
func randomBoundedComposition(k, nr, ns uint64, stream *rng.Stream) ([]uint32, error) {
	out := make([]uint32, nr)
	remaining := k

	for i := uint64(0); i < nr; i++ {
		left := nr - i - 1

		var low uint64

		maxFuture := left * ns
		if left != 0 && maxFuture/left != ns {
			return nil, fmt.Errorf("%w: overflow computing composition bound", ErrInfeasibleK)
		}

		if remaining > maxFuture {
			low = remaining - maxFuture
		}

		high := remaining
		if ns < high {
			high = ns
		}

		if low > high {
			return nil, fmt.Errorf("%w: infeasible degree bounds", ErrInfeasibleK)
		}

		span := high - low + 1
		di := low + stream.UniformU64(span)
		out[i] = uint32(di)
		remaining -= di
	}

	if remaining != 0 {
		return nil, fmt.Errorf("%w: composition did not sum to k", ErrInfeasibleK)
	}

	return out, nil
}
