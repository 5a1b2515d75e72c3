// Package engine3 implements Framework III (spec component C10): the
// adaptive engine. Its Count is Framework II's pass 1 with two
// memory-budgeted side effects woven in — full caching of small events'
// exact partner lists, and speculative i.i.d. prefetch draws for events
// expected to own several slots — so that Sample's pass 2 can skip
// re-querying the active index for whatever those side effects already
// covered. With Config.Budget == 0 neither side effect ever fires and
// Count/Sample reduce exactly to engine2's behavior.
package engine3

import (
	"container/heap"
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/sweep"
)

// prefetchEntry is one speculatively-drawn partner sample for an event,
// tagged with the pattern it was drawn under.
type prefetchEntry struct {
	partner activeindex.Handle
	isA     bool
}

// Engine is the Framework III driver. It implements join.Runner.
type Engine struct {
	// Recorder, if non-nil, times every named sub-phase.
	Recorder *observability.PhaseRecorder

	ctx   *sweep.Context
	tie   sweep.TieBreak
	built bool

	wA, wB, wTotal []uint64
	countDone      bool
	countValue     uint64

	hasCache     []bool
	cacheA       [][]activeindex.Handle
	cacheB       [][]activeindex.Handle
	prefetch     [][]prefetchEntry
	prefetchRNG  []*rng.Stream

	offsetA []uint32
	offsetB []uint32
	slotsA  []uint32
	slotsB  []uint32

	stats join.JoinStats
}

// New creates an Engine with the default side tie-break.
func New() *Engine {
	return &Engine{tie: sweep.RBeforeS}
}

// Reset releases all per-run state so Build can start fresh.
func (e *Engine) Reset() {
	*e = Engine{Recorder: e.Recorder, tie: e.tie}
}

// Build constructs the sweep substrate and per-event bookkeeping arrays.
func (e *Engine) Build(dataset geo.Dataset, cfg join.Config) error {
	if err := dataset.Validate(); err != nil {
		return fmt.Errorf("%w: %v", join.ErrInvalidDataset, err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return observability.Record(e.Recorder, "build_events", func() error {
		e.ctx = sweep.Build(dataset, e.tie)

		n := e.ctx.NumStarts()
		e.wA = make([]uint64, n)
		e.wB = make([]uint64, n)
		e.wTotal = make([]uint64, n)
		e.hasCache = make([]bool, n)
		e.cacheA = make([][]activeindex.Handle, n)
		e.cacheB = make([][]activeindex.Handle, n)
		e.prefetch = make([][]prefetchEntry, n)
		e.prefetchRNG = make([]*rng.Stream, n)
		e.built = true

		return nil
	})
}

// Stats returns the JoinStats snapshot accumulated by the most recent
// Count or Enumerate call.
func (e *Engine) Stats() join.JoinStats {
	return e.stats
}

// Count runs pass 1 exactly like engine2's, but before inserting each
// query into its own active side, it tries to fully cache the event
// (spec.md §4.8 step 1) or else grow its prefetch list against the
// global heap-bounded budget (step 2).
func (e *Engine) Count(cfg join.Config) (join.CountResult, error) {
	if !e.built {
		return join.CountResult{}, fmt.Errorf("%w: Count called before Build", join.ErrInternal)
	}

	var result join.CountResult

	err := observability.Record(e.Recorder, "phase1_count_and_cache", func() error {
		e.ctx.Reset()
		e.stats = join.JoinStats{}

		var total uint64

		var active [2]int

		var memFull uint64

		var h prefetchHeap

		numStarts := e.ctx.NumStarts()

		var starts int

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
			starts++

			e.wA[sid] = wA
			e.wB[sid] = wB
			e.wTotal[sid] = w

			e.tryCacheOrPrefetch(cfg, sid, wA, wB, w, other, info, &memFull, &h, total, starts, numStarts)

			e.ctx.Active(info.Side).Insert(activeindex.Handle(sid), info.YloRank, info.YhiLbRank)
			active[info.Side]++

			if info.Side == geo.SideR && active[geo.SideR] > e.stats.MaxActiveR {
				e.stats.MaxActiveR = active[geo.SideR]
			}

			if info.Side == geo.SideS && active[geo.SideS] > e.stats.MaxActiveS {
				e.stats.MaxActiveS = active[geo.SideS]
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

// tryCacheOrPrefetch implements spec.md §4.8's per-event budget step. It
// is a no-op whenever cfg.Budget == 0, which is what gives Framework III
// its budget-0-equals-Framework-II reduction.
func (e *Engine) tryCacheOrPrefetch(
	cfg join.Config, sid int32, wA, wB, w uint64, other *activeindex.Index,
	info sweep.StartInfo, memFull *uint64, h *prefetchHeap, totalSoFar uint64, starts, numStarts int,
) {
	if cfg.Budget == 0 {
		return
	}

	if cfg.WSmall > 0 && w <= cfg.WSmall && *memFull+w <= cfg.Budget {
		var bufA, bufB []activeindex.Handle

		bufA = other.ReportA(info.YloRank, bufA)
		bufB = other.ReportB(info.YloRank, info.YhiLbRank, bufB)

		e.cacheA[sid] = bufA
		e.cacheB[sid] = bufB
		e.hasCache[sid] = true
		*memFull += w

		capacity := int(cfg.Budget - *memFull)

		for h.Len() > capacity {
			evicted := heap.Pop(h).(prefetchItem)
			tail := e.prefetch[evicted.sid]
			e.prefetch[evicted.sid] = tail[:len(tail)-1]
		}

		return
	}

	if w == 0 {
		return
	}

	capacity := int(cfg.Budget - *memFull)
	if capacity <= 0 && h.Len() == 0 {
		return
	}

	if e.prefetchRNG[sid] == nil {
		e.prefetchRNG[sid] = rng.DeriveStream(cfg.Seed, join.SeedLabelPrefetch, uint64(sid))
	}

	stream := e.prefetchRNG[sid]

	whatEstimate := float64(totalSoFar) * float64(numStarts) / float64(starts)
	if whatEstimate <= 0 {
		return
	}

	muHat := float64(cfg.T) * float64(w) / whatEstimate

	for {
		r := len(e.prefetch[sid]) + 1
		score := poissonTailScore(muHat, r)

		if h.Len() >= capacity && (h.Len() == 0 || score <= (*h)[0].score) {
			return
		}

		partner, isA, ok := drawOne(wA, wB, stream, other, info)
		if !ok {
			return
		}

		e.prefetch[sid] = append(e.prefetch[sid], prefetchEntry{partner: partner, isA: isA})
		heap.Push(h, prefetchItem{score: score, sid: sid})

		if h.Len() > capacity {
			evicted := heap.Pop(h).(prefetchItem)
			tail := e.prefetch[evicted.sid]
			e.prefetch[evicted.sid] = tail[:len(tail)-1]
		}
	}
}

// drawOne draws one speculative partner sample, choosing pattern A with
// probability wA/(wA+wB).
func drawOne(
	wA, wB uint64, stream *rng.Stream, other *activeindex.Index, info sweep.StartInfo,
) (activeindex.Handle, bool, bool) {
	isA := pickPattern(wA, wB, stream)

	var (
		out []activeindex.Handle
		err error
	)

	if isA {
		out, err = other.SampleA(info.YloRank, 1, stream, out)
	} else {
		out, err = other.SampleB(info.YloRank, info.YhiLbRank, 1, stream, out)
	}

	if err != nil || len(out) == 0 {
		return 0, false, false
	}

	return out[0], isA, true
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
