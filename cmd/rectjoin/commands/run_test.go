package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
)

func TestSelectRunnerKnownVariants(t *testing.T) {
	t.Parallel()

	for _, variant := range []join.Variant{join.VariantSampling, join.VariantEnumSampling, join.VariantAdaptive} {
		runner, err := selectRunner(variant, nil)
		require.NoError(t, err)
		assert.NotNil(t, runner)
	}
}

func TestSelectRunnerUnknownVariant(t *testing.T) {
	t.Parallel()

	_, err := selectRunner(join.Variant("bogus"), nil)
	require.ErrorIs(t, err, join.ErrConfigMismatch)
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warn").String())
	assert.Equal(t, "ERROR", parseLogLevel("error").String())
	assert.Equal(t, "INFO", parseLogLevel("").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
}
