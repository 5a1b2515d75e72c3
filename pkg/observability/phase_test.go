package observability_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/observability"
)

func TestPhaseRecorderPropagatesError(t *testing.T) {
	t.Parallel()

	p, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	rec, err := observability.NewPhaseRecorder(p)
	require.NoError(t, err)

	sentinel := errors.New("boom")

	err = rec.Record("phase1_count", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestPhaseRecorderRunsFnOnSuccess(t *testing.T) {
	t.Parallel()

	p, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	rec, err := observability.NewPhaseRecorder(p)
	require.NoError(t, err)

	ran := false

	err = rec.Record("phase3_sample", func() error {
		ran = true

		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRecordIsNilSafe(t *testing.T) {
	t.Parallel()

	ran := false

	err := observability.Record(nil, "build_events", func() error {
		ran = true

		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPrometheusHandlerRequiresMetricsEnabled(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.MetricsEnabled = false

	p, err := observability.Init(cfg)
	require.NoError(t, err)

	_, err = observability.PrometheusHandler(p)
	assert.ErrorIs(t, err, observability.ErrMetricsDisabled)

	cfg.MetricsEnabled = true

	p, err = observability.Init(cfg)
	require.NoError(t, err)

	h, err := observability.PrometheusHandler(p)
	require.NoError(t, err)
	assert.NotNil(t, h)
}
