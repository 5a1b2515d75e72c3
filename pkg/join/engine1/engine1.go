// Package engine1 implements Framework I (spec component C9): the
// enumerate-then-index baseline. Count materializes every pair (bounded
// by Config.EnumCap) into a vector; Sample draws cfg.T uniform indices
// into that vector. Simpler and less memory-safe than Framework II, but
// a useful correctness oracle and a baseline for small |J|.
package engine1

import (
	"errors"
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/sweep"
)

// Engine is the Framework I driver. It implements join.Runner.
type Engine struct {
	// Recorder, if non-nil, times build_events,
	// phase1_enumerate_materialize, and phase2_resample as named phases.
	Recorder *observability.PhaseRecorder

	ctx   *sweep.Context
	tie   sweep.TieBreak
	built bool

	pairs        []join.Pair
	materialized bool
	stats        join.JoinStats
}

// New creates an Engine with the default side tie-break.
func New() *Engine {
	return &Engine{tie: sweep.RBeforeS}
}

// Reset releases all per-run state so Build can start fresh.
func (e *Engine) Reset() {
	e.ctx = nil
	e.built = false
	e.pairs = nil
	e.materialized = false
	e.stats = join.JoinStats{}
}

// Build constructs the sweep substrate from dataset.
func (e *Engine) Build(dataset geo.Dataset, cfg join.Config) error {
	if err := dataset.Validate(); err != nil {
		return fmt.Errorf("%w: %v", join.ErrInvalidDataset, err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return observability.Record(e.Recorder, "build_events", func() error {
		e.ctx = sweep.Build(dataset, e.tie)
		e.built = true

		return nil
	})
}

// errCapExceeded is the sentinel materialize's visitor returns to make
// sweep.Walk stop early once cap would be exceeded; materialize itself
// converts it to ErrEnumCapExceeded.
var errCapExceeded = errors.New("enum cap exceeded")

// materialize walks the sweep once via sweep.Walk, reporting every
// Pattern-A then Pattern-B partner per Start event into e.pairs. If cap
// > 0 and the running total would exceed it, the visitor aborts the
// walk by returning errCapExceeded; sweep.Walk always resets the active
// indices before returning, abort or not, so no partial state survives.
func (e *Engine) materialize(cap uint64) error {
	if e.materialized {
		return nil
	}

	return observability.Record(e.Recorder, "phase1_enumerate_materialize", func() error {
		stats, err := sweep.Walk(e.ctx, func(info sweep.StartInfo, partners []activeindex.Handle) error {
			if cap > 0 && uint64(len(e.pairs)+len(partners)) > cap {
				return errCapExceeded
			}

			for _, partner := range partners {
				e.pairs = append(e.pairs, makePair(e.ctx, info, partner))
			}

			return nil
		})
		if err != nil {
			e.pairs = nil

			return fmt.Errorf("%w: materialized count would exceed %d", join.ErrEnumCapExceeded, cap)
		}

		e.stats = stats
		e.materialized = true

		return nil
	})
}

func makePair(ctx *sweep.Context, queryInfo sweep.StartInfo, partner activeindex.Handle) join.Pair {
	partnerInfo := ctx.Info(int32(partner))

	if queryInfo.Side == geo.SideR {
		return join.Pair{RId: queryInfo.Id, SId: partnerInfo.Id}
	}

	return join.Pair{RId: partnerInfo.Id, SId: queryInfo.Id}
}

// Count materializes J (subject to cfg.EnumCap) and returns its exact
// length.
func (e *Engine) Count(cfg join.Config) (join.CountResult, error) {
	if !e.built {
		return join.CountResult{}, fmt.Errorf("%w: Count called before Build", join.ErrInternal)
	}

	if err := e.materialize(cfg.EnumCap); err != nil {
		return join.CountResult{}, err
	}

	return join.CountResult{Value: uint64(len(e.pairs)), Exact: true}, nil
}

// Sample draws cfg.T indices uniformly (with replacement) from the
// materialized vector, using rng_sample derived from cfg.Seed. Sample
// implicitly materializes if Count was not called first.
func (e *Engine) Sample(cfg join.Config) (join.SampleSet, error) {
	if !e.built {
		return join.SampleSet{}, fmt.Errorf("%w: Sample called before Build", join.ErrInternal)
	}

	if err := e.materialize(cfg.EnumCap); err != nil {
		return join.SampleSet{}, err
	}

	empty := join.SampleSet{WithReplacement: true, Weighted: false}

	if cfg.T == 0 || len(e.pairs) == 0 {
		return empty, nil
	}

	result := empty

	err := observability.Record(e.Recorder, "phase2_resample", func() error {
		sampleSeed := rng.DeriveSeed(cfg.Seed, join.SeedLabelSample)
		stream := rng.New(sampleSeed)

		out := make([]join.Pair, cfg.T)
		for i := range out {
			idx := stream.UniformU64(uint64(len(e.pairs)))
			out[i] = e.pairs[idx]
		}

		result.Pairs = out

		return nil
	})
	if err != nil {
		return join.SampleSet{}, err
	}

	return result, nil
}

// Enumerate materializes (if needed) and returns a deterministic
// iterator over every pair.
func (e *Engine) Enumerate(cfg join.Config) (join.JoinEnumerator, error) {
	if !e.built {
		return nil, fmt.Errorf("%w: Enumerate called before Build", join.ErrInternal)
	}

	if err := e.materialize(cfg.EnumCap); err != nil {
		return nil, err
	}

	return join.NewSliceEnumerator(e.pairs, e.stats), nil
}

// Stats returns the JoinStats snapshot from the most recent
// materialization.
func (e *Engine) Stats() join.JoinStats {
	return e.stats
}
