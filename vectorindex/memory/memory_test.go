package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAndGet(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	vec := []float32{1, 0, 0}
	payload := map[string]string{"chunk_id": "c1"}
	require.NoError(t, idx.Upsert(ctx, "e1", vec, payload))

	entry, ok, err := idx.Get(ctx, "e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, vec, entry.Vector)
	assert.Equal(t, "c1", entry.Payload["chunk_id"])

	// The stored entry is a copy; mutating the caller's buffers must not
	// affect it.
	vec[0] = 99
	payload["chunk_id"] = "mutated"
	entry, _, _ = idx.Get(ctx, "e1")
	assert.Equal(t, float32(1), entry.Vector[0])
	assert.Equal(t, "c1", entry.Payload["chunk_id"])

	_, ok, err = idx.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertReplaces(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "e1", []float32{1, 0}, nil))
	require.NoError(t, idx.Upsert(ctx, "e1", []float32{0, 1}, nil))

	info, err := idx.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Count)

	entry, ok, _ := idx.Get(ctx, "e1")
	require.True(t, ok)
	assert.Equal(t, []float32{0, 1}, entry.Vector)
}

func TestSearchSimilar(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "close", []float32{1, 0.1}, nil))
	require.NoError(t, idx.Upsert(ctx, "far", []float32{0, 1}, nil))
	require.NoError(t, idx.Upsert(ctx, "exact", []float32{1, 0}, nil))

	matches, err := idx.SearchSimilar(ctx, []float32{1, 0}, 0, -1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "exact", matches[0].Entry.ID)
	assert.Equal(t, "close", matches[1].Entry.ID)
	assert.Equal(t, "far", matches[2].Entry.ID)

	// Threshold drops low scorers.
	matches, err = idx.SearchSimilar(ctx, []float32{1, 0}, 0, 0.5, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// Limit caps results after ordering.
	matches, err = idx.SearchSimilar(ctx, []float32{1, 0}, 1, -1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "exact", matches[0].Entry.ID)
}

func TestSearchSimilarEmptyIndex(t *testing.T) {
	idx := NewIndex()

	matches, err := idx.SearchSimilar(context.Background(), []float32{1, 0}, 10, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchSimilarFilter(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "a", []float32{1, 0}, map[string]string{"document_id": "d1"}))
	require.NoError(t, idx.Upsert(ctx, "b", []float32{1, 0}, map[string]string{"document_id": "d2"}))

	matches, err := idx.SearchSimilar(ctx, []float32{1, 0}, 0, -1, func(payload map[string]string) bool {
		return payload["document_id"] == "d2"
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Entry.ID)
}

func TestListOrdersByID(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "e2", []float32{2}, nil))
	require.NoError(t, idx.Upsert(ctx, "e1", []float32{1}, map[string]string{"n": "x"}))

	entries, err := idx.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.Equal(t, "x", entries[0].Payload["n"])
}

func TestDelete(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "e1", []float32{1}, nil))
	require.NoError(t, idx.Upsert(ctx, "e2", []float32{2}, nil))

	require.NoError(t, idx.Delete(ctx, "e1", "unknown"))

	info, _ := idx.Info(ctx)
	assert.Equal(t, 1, info.Count)
	_, ok, _ := idx.Get(ctx, "e1")
	assert.False(t, ok)
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = idx.Upsert(ctx, "e1", []float32{float32(i), 1}, map[string]string{"n": "x"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			matches, err := idx.SearchSimilar(ctx, []float32{1, 1}, 0, -1, nil)
			require.NoError(t, err)
			for _, m := range matches {
				// A reader must never see a half-written entry.
				require.Len(t, m.Entry.Vector, 2)
			}
		}
	}()
	wg.Wait()
}
