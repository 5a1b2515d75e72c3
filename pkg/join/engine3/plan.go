package engine3

import (
	"fmt"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/alias"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/rng"
)

// buildSlotPlan is identical to engine2's: an alias table over w_total,
// t draws of (event, pattern), bucketed by two stable-fill passes. It is
// unaffected by caching or prefetching — Framework III's Sample still
// allocates slots exactly as Framework II does (spec.md §4.8).
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

			isA := pickPattern(e.wA[sid], e.wB[sid], rngPlan)
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

		return nil
	})
}
