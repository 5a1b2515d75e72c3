package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
)

func TestJoinStatsGaugesRecordDoesNotPanic(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.MetricsEnabled = true

	p, err := observability.Init(cfg)
	require.NoError(t, err)

	gauges, err := observability.NewJoinStatsGauges(p)
	require.NoError(t, err)

	gauges.Record(context.Background(), join.JoinStats{
		EventsSeen:      10,
		CandidateChecks: 4,
		MaxActiveR:      2,
		MaxActiveS:      3,
	})
}

func TestJoinStatsGaugesWithNoopMeter(t *testing.T) {
	t.Parallel()

	p, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	gauges, err := observability.NewJoinStatsGauges(p)
	require.NoError(t, err)

	gauges.Record(context.Background(), join.JoinStats{EventsSeen: 1})
}
