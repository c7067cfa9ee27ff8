package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCommitter records batch sizes for chunking assertions.
type countingCommitter struct {
	batches []int
	failOn  int // 1-based commit index to fail on, 0 for never
}

func (c *countingCommitter) CommitBatch(_ context.Context, _ string, docs []Doc) error {
	if c.failOn > 0 && len(c.batches)+1 == c.failOn {
		return errors.New("commit rejected")
	}
	c.batches = append(c.batches, len(docs))
	return nil
}

func makeDocs(n int) []Doc {
	docs := make([]Doc, n)
	for i := range docs {
		docs[i] = Doc{ID: fmt.Sprintf("doc-%04d", i), Data: map[string]any{"n": i}}
	}
	return docs
}

func TestUploadAll_ChunksAtBatchCeiling(t *testing.T) {
	committer := &countingCommitter{}
	commits, err := NewUploader(committer).UploadAll(context.Background(), "notices", makeDocs(1050))
	require.NoError(t, err)
	assert.Equal(t, 3, commits)
	assert.Equal(t, []int{400, 400, 250}, committer.batches)
}

func TestUploadAll_ExactMultiple(t *testing.T) {
	committer := &countingCommitter{}
	commits, err := NewUploader(committer).UploadAll(context.Background(), "notices", makeDocs(800))
	require.NoError(t, err)
	assert.Equal(t, 2, commits)
	assert.Equal(t, []int{400, 400}, committer.batches)
}

func TestUploadAll_Empty(t *testing.T) {
	committer := &countingCommitter{}
	commits, err := NewUploader(committer).UploadAll(context.Background(), "notices", nil)
	require.NoError(t, err)
	assert.Zero(t, commits)
	assert.Empty(t, committer.batches)
}

func TestUploadAll_StopsOnFailedCommit(t *testing.T) {
	committer := &countingCommitter{failOn: 2}
	commits, err := NewUploader(committer).UploadAll(context.Background(), "notices", makeDocs(900))
	require.Error(t, err)
	assert.Equal(t, 1, commits)

	var storeErr *Error
	assert.ErrorAs(t, err, &storeErr)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk(nil, 10))
	assert.Nil(t, Chunk(makeDocs(3), 0))
	assert.Len(t, Chunk(makeDocs(10), 3), 4)
}

func TestMemory_SetAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "notices", "a", map[string]any{"title": "One"}, false))

	data, exists, err := m.Get(ctx, "notices", "a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "One", data["title"])

	_, exists, err = m.Get(ctx, "notices", "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemory_MergePreservesFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "notices", "a", map[string]any{"title": "One", "views": 5}, false))
	require.NoError(t, m.Set(ctx, "notices", "a", map[string]any{"title": "One updated"}, true))

	data, _, err := m.Get(ctx, "notices", "a")
	require.NoError(t, err)
	assert.Equal(t, "One updated", data["title"])
	assert.Equal(t, 5, data["views"])
}

func TestMemory_OverwriteDropsFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "notices", "a", map[string]any{"title": "One", "views": 5}, false))
	require.NoError(t, m.Set(ctx, "notices", "a", map[string]any{"title": "Two"}, false))

	data, _, err := m.Get(ctx, "notices", "a")
	require.NoError(t, err)
	assert.Equal(t, "Two", data["title"])
	assert.NotContains(t, data, "views")
}

func TestMemory_FindByField(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "notices", "a", map[string]any{FingerprintField: "abc123"}, false))

	found, err := m.FindByField(ctx, "notices", FingerprintField, "abc123")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = m.FindByField(ctx, "notices", FingerprintField, "zzz")
	require.NoError(t, err)
	assert.False(t, found)
}
