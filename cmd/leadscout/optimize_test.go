package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "l1", "name": "Ada", "title": "CTO", "company": "Acme", "ground_truth_rank": 1},
		{"id": "l2", "name": "Grace", "title": "VP Eng", "company": "Acme", "ground_truth_rank": 2}
	]`), 0o644))

	ds, err := loadDataset(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Size())

	rank, ok := ds.Rank("l1")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestLoadDataset_FileErrors(t *testing.T) {
	ctx := context.Background()

	_, err := loadDataset(ctx, nil, filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err = loadDataset(ctx, nil, bad)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	_, err = loadDataset(ctx, nil, empty)
	assert.Error(t, err)
}
