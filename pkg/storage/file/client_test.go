package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmlanDas-dot/Innovastra/pkg/storage/file"
)

func newTestClient(t *testing.T) *file.Client {
	t.Helper()

	client, err := file.NewClient(&file.Config{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	err := client.Save(ctx, "decision_memories", `[{"id":"m1"}]`)
	require.NoError(t, err)

	payload, ok, err := client.Load(ctx, "decision_memories")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"m1"}]`, payload)
}

func TestLoadMissingKey(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	payload, ok, err := client.Load(ctx, "decision_vectors")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, payload)
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Save(ctx, "decision_memories", "first"))
	require.NoError(t, client.Save(ctx, "decision_memories", "second"))

	payload, ok, err := client.Load(ctx, "decision_memories")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", payload)
}

func TestKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	require.NoError(t, client.Save(ctx, "decision_memories", "records"))
	require.NoError(t, client.Save(ctx, "decision_vectors", "vectors"))

	memories, ok, err := client.Load(ctx, "decision_memories")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "records", memories)

	vectors, ok, err := client.Load(ctx, "decision_vectors")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "vectors", vectors)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	client, err := file.NewClient(&file.Config{Dir: dir})
	require.NoError(t, err)

	require.NoError(t, client.Save(ctx, "decision_memories", "payload"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}
