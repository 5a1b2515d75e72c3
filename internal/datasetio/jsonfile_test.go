package datasetio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DANNHIROAKI/Join-Sampling-Backup/internal/datasetio"
)

const sampleDoc = `{
  "name": "tiny",
  "r": [
    {"id": 10, "rect": [0, 0, 1, 1]},
    {"id": 11, "rect": [2, 2, 3, 3]}
  ],
  "s": [
    {"id": 20, "rect": [0.5, 0.5, 1.5, 1.5]}
  ]
}`

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestJSONFileSourceLoad(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, sampleDoc)

	src := datasetio.JSONFileSource{Path: path}

	ds, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tiny", ds.Name)
	require.Equal(t, 2, ds.R.Len())
	require.Equal(t, 1, ds.S.Len())

	assert.Equal(t, uint32(10), ds.R.Boxes[0].Id)
	assert.Equal(t, uint32(20), ds.S.Boxes[0].Id)

	require.NoError(t, ds.Validate())
}

func TestJSONFileSourceMissingFile(t *testing.T) {
	t.Parallel()

	src := datasetio.JSONFileSource{Path: filepath.Join(t.TempDir(), "missing.json")}

	_, err := src.Load(context.Background())
	require.Error(t, err)
}

func TestJSONFileSourceCanceledContext(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, sampleDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := datasetio.JSONFileSource{Path: path}

	_, err := src.Load(ctx)
	require.Error(t, err)
}

func TestJSONFileSourceMalformed(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, `{"name": "bad", "r": [{"id": 1`)

	src := datasetio.JSONFileSource{Path: path}

	_, err := src.Load(context.Background())
	require.Error(t, err)
}
