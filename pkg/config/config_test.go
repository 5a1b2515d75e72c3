package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/config"
	"github.com/DANNHIROAKI/Join-Sampling-Backup/pkg/join"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(cwd)) })

	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "ours", cfg.Method)
	assert.Equal(t, "sampling", cfg.Variant)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rectjoin.yaml")

	content := []byte("method: ours\nvariant: adaptive\nt: 1000\nseed: 42\nbudget: 5000\nw_small: 8\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, uint32(1000), cfg.T)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, uint64(5000), cfg.Budget)
	assert.Equal(t, uint64(8), cfg.WSmall)

	jc := cfg.JoinConfig()
	assert.Equal(t, join.VariantAdaptive, jc.Variant)
	assert.Equal(t, join.MethodOurs, jc.Method)
	require.NoError(t, jc.Validate())
}

func TestLoadRejectsUnknownVariant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rectjoin.yaml")

	require.NoError(t, os.WriteFile(path, []byte("variant: bogus\n"), 0o600))

	_, err := config.Load(viper.New(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownVariant)
}

func TestLoadRejectsUnknownMethod(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rectjoin.yaml")

	require.NoError(t, os.WriteFile(path, []byte("method: bogus\n"), 0o600))

	_, err := config.Load(viper.New(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownMethod)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rectjoin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 1\n"), 0o600))

	t.Setenv("RECTJOIN_SEED", "777")

	cfg, err := config.Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, uint64(777), cfg.Seed)
}
