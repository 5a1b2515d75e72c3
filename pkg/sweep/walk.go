package sweep

import (
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/activeindex"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/geo"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
)

// Visitor receives one Start event's reported partners during Walk.
// partners is reused across calls — copy it out if it needs to outlive
// the call. A non-nil return stops the walk immediately; Walk still
// leaves both active indices reset before returning that error.
type Visitor func(info StartInfo, partners []activeindex.Handle) error

// Walk performs one full Start/End sweep over ctx's event stream: on
// every End event it erases the matching handle from the active index
// it belongs to; on every Start event it reports Pattern-A then
// Pattern-B partners from the opposite side's active index (spec
// component C7's "report-then-insert" step) before inserting the Start
// event's own handle. visit is called once per Start event with the
// reported partners.
//
// Every framework driver (C8/C9/C10) performs exactly this walk for
// Count, Sample's weight pass, and Enumerate — only what visit does
// with the partners, and whether it aborts early, differs. Walk owns
// the walk itself, including the
// EventsSeen/CandidateChecks/MaxActive{R,S} bookkeeping, so drivers
// never re-derive it.
//
// ctx is reset before the walk starts and always reset again before
// Walk returns, whether it ran to completion or visit aborted it.
func Walk(ctx *Context, visit Visitor) (join.JoinStats, error) {
	ctx.Reset()
	defer ctx.Reset()

	var active [2]int

	var stats join.JoinStats

	var buf []activeindex.Handle

	for pos := 0; pos < ctx.NumEvents(); pos++ {
		ev := ctx.EventAt(pos)

		if ev.Kind == KindEnd {
			sid := ctx.StartIDFor(ev.Side, ev.Index)
			ctx.Active(ev.Side).Erase(activeindex.Handle(sid))
			active[ev.Side]--

			continue
		}

		sid := ctx.StartIDAt(pos)
		info := ctx.Info(sid)
		other := ctx.Active(info.Side.Other())

		buf = buf[:0]
		buf = other.ReportA(info.YloRank, buf)
		buf = other.ReportB(info.YloRank, info.YhiLbRank, buf)

		if err := visit(info, buf); err != nil {
			return stats, err
		}

		stats.CandidateChecks += uint64(len(buf))
		stats.EventsSeen++

		ctx.Active(info.Side).Insert(activeindex.Handle(sid), info.YloRank, info.YhiLbRank)
		active[info.Side]++

		if info.Side == geo.SideR && active[geo.SideR] > stats.MaxActiveR {
			stats.MaxActiveR = active[geo.SideR]
		}

		if info.Side == geo.SideS && active[geo.SideS] > stats.MaxActiveS {
			stats.MaxActiveS = active[geo.SideS]
		}
	}

	return stats, nil
}
