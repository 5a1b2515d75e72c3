package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
)

const (
	metricEventsSeen      = "rectjoin.join.events_seen"
	metricCandidateChecks = "rectjoin.join.candidate_checks"
	metricMaxActiveR      = "rectjoin.join.max_active_r"
	metricMaxActiveS      = "rectjoin.join.max_active_s"
)

// JoinStatsGauges mirrors one run's join.JoinStats snapshot (events
// seen, candidate checks performed, and the largest per-side active-set
// size) onto the meter as four independent synchronous gauges, per
// SPEC_FULL.md §3's "JoinStats gauge set" domain-stack wiring.
type JoinStatsGauges struct {
	eventsSeen      metric.Int64Gauge
	candidateChecks metric.Int64Gauge
	maxActiveR      metric.Int64Gauge
	maxActiveS      metric.Int64Gauge
}

// NewJoinStatsGauges builds the gauge set from p.Meter. With a no-op
// meter (metrics disabled), every Record call is a cheap no-op.
func NewJoinStatsGauges(p Providers) (*JoinStatsGauges, error) {
	eventsSeen, err := p.Meter.Int64Gauge(metricEventsSeen,
		metric.WithDescription("Start events processed by the most recent sweep"))
	if err != nil {
		return nil, err
	}

	candidateChecks, err := p.Meter.Int64Gauge(metricCandidateChecks,
		metric.WithDescription("Partner candidates reported across all Start events"))
	if err != nil {
		return nil, err
	}

	maxActiveR, err := p.Meter.Int64Gauge(metricMaxActiveR,
		metric.WithDescription("Largest R-side active-set size reached during the sweep"))
	if err != nil {
		return nil, err
	}

	maxActiveS, err := p.Meter.Int64Gauge(metricMaxActiveS,
		metric.WithDescription("Largest S-side active-set size reached during the sweep"))
	if err != nil {
		return nil, err
	}

	return &JoinStatsGauges{
		eventsSeen:      eventsSeen,
		candidateChecks: candidateChecks,
		maxActiveR:      maxActiveR,
		maxActiveS:      maxActiveS,
	}, nil
}

// Record publishes one JoinStats snapshot. Safe to call once per run,
// right after Count or Enumerate completes.
func (g *JoinStatsGauges) Record(ctx context.Context, stats join.JoinStats) {
	g.eventsSeen.Record(ctx, int64(stats.EventsSeen))
	g.candidateChecks.Record(ctx, int64(stats.CandidateChecks))
	g.maxActiveR.Record(ctx, int64(stats.MaxActiveR))
	g.maxActiveS.Record(ctx, int64(stats.MaxActiveS))
}
