package engine3

import (
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/sweep"
)

// Sample fills the same t output slots Framework II would, at three
// possible costs per event (spec.md §4.8): zero pass-2 work for a
// fully-cached event (uniform index draw into the exact cache), zero
// active-index work for a prefetch-covered slot (the sample was already
// taken in Count), or an ordinary pass-2 draw for whatever is left —
// the residual. With Config.Budget == 0 every event falls through to
// the residual path with the same per-event seeds engine2 uses, so the
// output is byte-identical to Framework II's.
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

	err := observability.Record(e.Recorder, "phase3_fill_residual", func() error {
		e.ctx.Reset()

		for pos := 0; pos < e.ctx.NumEvents(); pos++ {
			ev := e.ctx.EventAt(pos)

			if ev.Kind == sweep.KindEnd {
				sid := e.ctx.StartIDFor(ev.Side, ev.Index)
				e.ctx.Active(ev.Side).Erase(activeindex.Handle(sid))

				continue
			}

			sid := e.ctx.StartIDAt(pos)
			info := e.ctx.Info(sid)

			if err := e.fillEvent(sid, info, sampleSeed, pairs); err != nil {
				return err
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

func (e *Engine) fillEvent(sid int32, info sweep.StartInfo, sampleSeed uint64, pairs []join.Pair) error {
	kA := int(e.offsetA[sid+1] - e.offsetA[sid])
	kB := int(e.offsetB[sid+1] - e.offsetB[sid])

	if kA > 0 {
		if err := e.fillPattern(sid, info, true, kA, sampleSeed, e.offsetA[sid], e.slotsA, pairs); err != nil {
			return err
		}
	}

	if kB > 0 {
		if err := e.fillPattern(sid, info, false, kB, sampleSeed, e.offsetB[sid], e.slotsB, pairs); err != nil {
			return err
		}
	}

	return nil
}

// fillPattern fills k output slots of one pattern for event sid: first
// from the full cache (if any), else from the matching-pattern prefetch
// prefix, then a residual pass-2 draw for whatever remains.
func (e *Engine) fillPattern(
	sid int32, info sweep.StartInfo, isA bool, k int, sampleSeed uint64,
	baseOffset uint32, slots []uint32, pairs []join.Pair,
) error {
	if e.hasCache[sid] {
		cache := e.cacheA[sid]
		if !isA {
			cache = e.cacheB[sid]
		}

		if len(cache) == 0 {
			return fmt.Errorf("%w: cached event %d has empty %s cache but k=%d", join.ErrInternal, sid, patternName(isA), k)
		}

		label := join.SeedLabelEventA
		if !isA {
			label = join.SeedLabelEventB
		}

		stream := rng.DeriveStream(sampleSeed, label, uint64(sid))

		for i := 0; i < k; i++ {
			idx := stream.UniformU64(uint64(len(cache)))
			slot := slots[baseOffset+uint32(i)]
			pairs[slot] = e.makePair(info, cache[idx])
		}

		return nil
	}

	consumed := 0

	for i := 0; i < len(e.prefetch[sid]) && consumed < k; i++ {
		entry := e.prefetch[sid][i]
		if entry.isA != isA {
			continue
		}

		slot := slots[baseOffset+uint32(consumed)]
		pairs[slot] = e.makePair(info, entry.partner)
		consumed++
	}

	residual := k - consumed
	if residual <= 0 {
		return nil
	}

	label := join.SeedLabelEventA
	if !isA {
		label = join.SeedLabelEventB
	}

	stream := rng.DeriveStream(sampleSeed, label, uint64(sid))

	other := e.ctx.Active(info.Side.Other())

	var (
		buf []activeindex.Handle
		err error
	)

	if isA {
		buf, err = other.SampleA(info.YloRank, residual, stream, buf)
	} else {
		buf, err = other.SampleB(info.YloRank, info.YhiLbRank, residual, stream, buf)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", join.ErrEmptyQuery, err)
	}

	for i, partner := range buf {
		slot := slots[baseOffset+uint32(consumed+i)]
		pairs[slot] = e.makePair(info, partner)
	}

	return nil
}

func patternName(isA bool) string {
	if isA {
		return "A"
	}

	return "B"
}

func (e *Engine) makePair(queryInfo sweep.StartInfo, partner activeindex.Handle) join.Pair {
	partnerInfo := e.ctx.Info(int32(partner))

	if queryInfo.Side == geo.SideR {
		return join.Pair{RId: queryInfo.Id, SId: partnerInfo.Id}
	}

	return join.Pair{RId: partnerInfo.Id, SId: queryInfo.Id}
}
