// Package engine2 implements Framework II (spec component C8): the
// two-pass sampling engine that never materializes J. Pass 1 computes
// exact per-event weights; BuildSlotPlan assigns the t output slots to
// (event, pattern) pairs; pass 2 fills those slots by conditional range
// sampling against the same active-index snapshots pass 1 saw.
package engine2

import (
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/alias"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/sweep"
)

// Engine is the Framework II driver. It implements join.Runner.
type Engine struct {
	// Recorder, if non-nil, receives a span+histogram measurement for
	// every named sub-phase (build_events, phase1_count, phase2_plan,
	// phase3_sample, ...). Safe to leave nil.
	Recorder *observability.PhaseRecorder

	dataset geo.Dataset
	ctx     *sweep.Context
	tie     sweep.TieBreak
	built   bool

	wA, wB, wTotal []uint64
	countDone      bool
	countValue     uint64

	planBuilt bool
	offsetA   []uint32
	offsetB   []uint32
	slotsA    []uint32
	slotsB    []uint32

	stats join.JoinStats
}

// New creates an Engine with the default side tie-break.
func New() *Engine {
	return &Engine{tie: sweep.RBeforeS}
}

// Reset releases all per-run state so Build can start fresh.
func (e *Engine) Reset() {
	e.dataset = geo.Dataset{}
	e.ctx = nil
	e.built = false
	e.wA, e.wB, e.wTotal = nil, nil, nil
	e.countDone = false
	e.countValue = 0
	e.planBuilt = false
	e.offsetA, e.offsetB, e.slotsA, e.slotsB = nil, nil, nil, nil
	e.stats = join.JoinStats{}
}

// Build constructs the sweep substrate (event list, y-rank tables, and
// two empty active indices) from dataset. Idempotent: may be called
// again after Reset and produces byte-identical internal state.
func (e *Engine) Build(dataset geo.Dataset, cfg join.Config) error {
	if err := dataset.Validate(); err != nil {
		return fmt.Errorf("%w: %v", join.ErrInvalidDataset, err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return observability.Record(e.Recorder, "build_events", func() error {
		e.dataset = dataset
		e.ctx = sweep.Build(dataset, e.tie)
		e.wA = make([]uint64, e.ctx.NumStarts())
		e.wB = make([]uint64, e.ctx.NumStarts())
		e.wTotal = make([]uint64, e.ctx.NumStarts())
		e.built = true

		return nil
	})
}

// Count runs pass 1: walks the event list once, computing w_A(e), w_B(e)
// for every Start event e and accumulating W = sum(w(e)) = |J|. Per
// spec.md §4.7, each Start's queries are answered before that
// rectangle is inserted into its own side — the ordering that realizes
// the half-open strict inequality.
func (e *Engine) Count(cfg join.Config) (join.CountResult, error) {
	if !e.built {
		return join.CountResult{}, fmt.Errorf("%w: Count called before Build", join.ErrInternal)
	}

	var result join.CountResult

	err := observability.Record(e.Recorder, "phase1_count", func() error {
		e.ctx.Reset()
		e.stats = join.JoinStats{}

		var total uint64

		var active [2]int

		for pos := 0; pos < e.ctx.NumEvents(); pos++ {
			ev := e.ctx.EventAt(pos)

			if ev.Kind == sweep.KindEnd {
				sid := e.ctx.StartIDFor(ev.Side, ev.Index)
				e.ctx.Active(ev.Side).Erase(activeindex.Handle(sid))
				active[ev.Side]--

				continue
			}

			sid := e.ctx.StartIDAt(pos)
			info := e.ctx.Info(sid)
			other := e.ctx.Active(info.Side.Other())

			wA := uint64(other.CountA(info.YloRank))
			wB := uint64(other.CountB(info.YloRank, info.YhiLbRank))
			w := wA + wB

			newTotal := total + w
			if newTotal < total {
				return fmt.Errorf("%w", join.ErrJoinTooLarge)
			}

			total = newTotal

			e.wA[sid] = wA
			e.wB[sid] = wB
			e.wTotal[sid] = w

			e.ctx.Active(info.Side).Insert(activeindex.Handle(sid), info.YloRank, info.YhiLbRank)
			active[info.Side]++

			if active[info.Side] > e.statsMaxActive(info.Side) {
				e.setStatsMaxActive(info.Side, active[info.Side])
			}

			e.stats.EventsSeen++
			e.stats.CandidateChecks += w
		}

		e.ctx.Reset()
		e.countValue = total
		e.countDone = true

		return nil
	})
	if err != nil {
		return join.CountResult{}, err
	}

	result = join.CountResult{Value: e.countValue, Exact: true}

	return result, nil
}

func (e *Engine) statsMaxActive(side geo.Side) int {
	if side == geo.SideR {
		return e.stats.MaxActiveR
	}

	return e.stats.MaxActiveS
}

func (e *Engine) setStatsMaxActive(side geo.Side, v int) {
	if side == geo.SideR {
		e.stats.MaxActiveR = v
	} else {
		e.stats.MaxActiveS = v
	}
}

// Stats returns the JoinStats snapshot accumulated by the most recent
// Count or Enumerate call.
func (e *Engine) Stats() join.JoinStats {
	return e.stats
}

// buildSlotPlan builds the alias table over w_total, draws t event ids
// plus a pattern letter per slot, and buckets slots per (event, pattern)
// via two stable-fill passes (spec.md §4.7 BuildSlotPlan).
func (e *Engine) buildSlotPlan(t uint32, planSeed uint64) error {
	return observability.Record(e.Recorder, "phase2_plan", func() error {
		n := e.ctx.NumStarts()

		tbl, err := alias.BuildU64(e.wTotal)
		if err != nil {
			return fmt.Errorf("%w: %v", join.ErrBadWeight, err)
		}

		rngPlan := rng.New(planSeed)

		eventOf := make([]int32, t)
		patternA := make([]bool, t)

		countA := make([]uint32, n)
		countB := make([]uint32, n)

		for j := uint32(0); j < t; j++ {
			sid := tbl.Sample(rngPlan)
			eventOf[j] = int32(sid)

			wA, wB := e.wA[sid], e.wB[sid]

			isA := pickPattern(wA, wB, rngPlan)
			patternA[j] = isA

			if isA {
				countA[sid]++
			} else {
				countB[sid]++
			}
		}

		e.offsetA = make([]uint32, n+1)
		e.offsetB = make([]uint32, n+1)

		for i := 0; i < n; i++ {
			e.offsetA[i+1] = e.offsetA[i] + countA[i]
			e.offsetB[i+1] = e.offsetB[i] + countB[i]
		}

		e.slotsA = make([]uint32, e.offsetA[n])
		e.slotsB = make([]uint32, e.offsetB[n])

		cursorA := append([]uint32(nil), e.offsetA[:n]...)
		cursorB := append([]uint32(nil), e.offsetB[:n]...)

		for j := uint32(0); j < t; j++ {
			sid := eventOf[j]

			if patternA[j] {
				e.slotsA[cursorA[sid]] = j
				cursorA[sid]++
			} else {
				e.slotsB[cursorB[sid]] = j
				cursorB[sid]++
			}
		}

		e.planBuilt = true

		return nil
	})
}

// pickPattern chooses A with probability wA/(wA+wB), handling either
// weight being zero without division.
func pickPattern(wA, wB uint64, s *rng.Stream) bool {
	if wB == 0 {
		return true
	}

	if wA == 0 {
		return false
	}

	return s.NextF64() < float64(wA)/float64(wA+wB)
}

// Sample runs BuildSlotPlan then pass 2: for each Start event it draws
// its assigned slots from the opposite active index and fills the
// output at the plan's recorded positions, before inserting the query
// into its own side (same ordering as pass 1).
func (e *Engine) Sample(cfg join.Config) (join.SampleSet, error) {
	if !e.countDone {
		return join.SampleSet{}, fmt.Errorf("%w: Sample called before Count", join.ErrInternal)
	}

	empty := join.SampleSet{WithReplacement: true, Weighted: false}

	if cfg.T == 0 || e.countValue == 0 {
		return empty, nil
	}

	sampleSeed := rng.DeriveSeed(cfg.Seed, join.SeedLabelSample)
	planSeed := rng.DeriveSeed(sampleSeed, join.SeedLabelPlan)

	if err := e.buildSlotPlan(cfg.T, planSeed); err != nil {
		return join.SampleSet{}, err
	}

	pairs := make([]join.Pair, cfg.T)

	err := observability.Record(e.Recorder, "phase3_sample", func() error {
		e.ctx.Reset()

		var bufA, bufB []activeindex.Handle

		for pos := 0; pos < e.ctx.NumEvents(); pos++ {
			ev := e.ctx.EventAt(pos)

			if ev.Kind == sweep.KindEnd {
				sid := e.ctx.StartIDFor(ev.Side, ev.Index)
				e.ctx.Active(ev.Side).Erase(activeindex.Handle(sid))

				continue
			}

			sid := e.ctx.StartIDAt(pos)
			info := e.ctx.Info(sid)
			other := e.ctx.Active(info.Side.Other())

			kA := e.offsetA[sid+1] - e.offsetA[sid]
			kB := e.offsetB[sid+1] - e.offsetB[sid]

			if kA > 0 {
				seedA := rng.DeriveSeed(sampleSeed, join.SeedLabelEventA, uint64(sid))
				rngA := rng.New(seedA)

				bufA = bufA[:0]

				var err error

				bufA, err = other.SampleA(info.YloRank, int(kA), rngA, bufA)
				if err != nil {
					return fmt.Errorf("%w: %v", join.ErrEmptyQuery, err)
				}

				for i, partner := range bufA {
					slot := e.slotsA[e.offsetA[sid]+uint32(i)]
					pairs[slot] = e.makePair(info, partner)
				}
			}

			if kB > 0 {
				seedB := rng.DeriveSeed(sampleSeed, join.SeedLabelEventB, uint64(sid))
				rngB := rng.New(seedB)

				bufB = bufB[:0]

				var err error

				bufB, err = other.SampleB(info.YloRank, info.YhiLbRank, int(kB), rngB, bufB)
				if err != nil {
					return fmt.Errorf("%w: %v", join.ErrEmptyQuery, err)
				}

				for i, partner := range bufB {
					slot := e.slotsB[e.offsetB[sid]+uint32(i)]
					pairs[slot] = e.makePair(info, partner)
				}
			}

			e.ctx.Active(info.Side).Insert(activeindex.Handle(sid), info.YloRank, info.YhiLbRank)
		}

		e.ctx.Reset()

		return nil
	})
	if err != nil {
		return join.SampleSet{}, err
	}

	return join.SampleSet{Pairs: pairs, WithReplacement: true, Weighted: false}, nil
}

// makePair orders a query's info and its sampled partner handle into a
// (RId, SId) pair according to which side the query was on.
func (e *Engine) makePair(queryInfo sweep.StartInfo, partner activeindex.Handle) join.Pair {
	partnerInfo := e.ctx.Info(int32(partner))

	if queryInfo.Side == geo.SideR {
		return join.Pair{RId: queryInfo.Id, SId: partnerInfo.Id}
	}

	return join.Pair{RId: partnerInfo.Id, SId: queryInfo.Id}
}
