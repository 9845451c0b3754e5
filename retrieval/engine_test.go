package retrieval

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt/ragcore/ai/mock"
	"github.com/veldt/ragcore/config"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/vectorindex"
	"github.com/veldt/ragcore/vectorindex/memory"
)

func testParams() config.RetrievalParams {
	return config.RetrievalParams{
		MinChunkLength:      10,
		ShortChunkThreshold: 50,
		ShortChunkPenalty:   0.7,
	}
}

func payload(chunkID string, index, contentLength int) map[string]string {
	return map[string]string{
		core.MetaChunkID:       chunkID,
		core.MetaDocumentID:    "doc-1",
		core.MetaChunkIndex:    strconv.Itoa(index),
		core.MetaContentLength: strconv.Itoa(contentLength),
	}
}

// queryEmbedder always embeds the query as a fixed unit vector so entry
// vectors control the cosine scores exactly.
func queryEmbedder(vector []float32) *mock.Embedder {
	e := mock.NewEmbedder()
	e.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return vector, nil
	}
	return e
}

func newTestEngine(t *testing.T, embedder *mock.Embedder, index *memory.Index) *Engine {
	t.Helper()
	engine, err := NewEngine(embedder, index, testParams())
	require.NoError(t, err)
	return engine
}

func TestNewEngineRequiresDependencies(t *testing.T) {
	_, err := NewEngine(nil, memory.NewIndex(), testParams())
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewEngine(mock.NewEmbedder(), nil, testParams())
	assert.ErrorIs(t, err, ErrIndexRequired)
}

func TestSearchEmptyIndex(t *testing.T) {
	engine := newTestEngine(t, mock.NewEmbedder(), memory.NewIndex())

	results, err := engine.Search(context.Background(), "anything", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmptyQuery(t *testing.T) {
	engine := newTestEngine(t, mock.NewEmbedder(), memory.NewIndex())

	_, err := engine.Search(context.Background(), "   ", 10, 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	embedder := mock.NewEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, errors.New("model down")
	}
	engine := newTestEngine(t, embedder, memory.NewIndex())

	_, err := engine.Search(context.Background(), "query", 10, 0)
	assert.ErrorIs(t, err, ErrQueryEmbedding)
}

func TestSearchNoiseFilter(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	// The noise chunk matches the query vector exactly but sits below the
	// minimum length, so it must never surface.
	require.NoError(t, index.Upsert(ctx, "e-noise", []float32{1, 0}, payload("chunk-noise", 0, 5)))
	require.NoError(t, index.Upsert(ctx, "e-good", []float32{0.8, 0.6}, payload("chunk-good", 1, 120)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk-good", results[0].Chunk.ChunkID)
}

func TestSearchNoiseFilterBoundary(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	// A chunk of exactly the minimum length is still noise; one character
	// over clears the floor.
	require.NoError(t, index.Upsert(ctx, "e-edge", []float32{1, 0}, payload("chunk-edge", 0, 10)))
	require.NoError(t, index.Upsert(ctx, "e-over", []float32{1, 0}, payload("chunk-over", 1, 11)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk-over", results[0].Chunk.ChunkID)
}

func TestSearchShortChunkPenalty(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	// Both entries score cosine 1.0 against the query. The short one ends
	// up behind the long one after the 0.7 penalty.
	require.NoError(t, index.Upsert(ctx, "e-short", []float32{1, 0}, payload("chunk-short", 0, 20)))
	require.NoError(t, index.Upsert(ctx, "e-long", []float32{1, 0}, payload("chunk-long", 1, 200)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "chunk-long", results[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "chunk-short", results[1].Chunk.ChunkID)
	assert.InDelta(t, 0.7, results[1].Score, 1e-6)
}

func TestSearchShortChunkPenaltyBoundary(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	// Exactly the short threshold still takes the penalty; one character
	// over keeps the raw score.
	require.NoError(t, index.Upsert(ctx, "e-edge", []float32{1, 0}, payload("chunk-edge", 0, 50)))
	require.NoError(t, index.Upsert(ctx, "e-over", []float32{1, 0}, payload("chunk-over", 1, 51)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "chunk-over", results[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "chunk-edge", results[1].Chunk.ChunkID)
	assert.InDelta(t, 0.7, results[1].Score, 1e-6)
}

func TestSearchThresholdAppliesAfterPenalty(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	// Raw score 1.0, adjusted 0.7. A 0.8 threshold must exclude it.
	require.NoError(t, index.Upsert(ctx, "e-short", []float32{1, 0}, payload("chunk-short", 0, 20)))
	require.NoError(t, index.Upsert(ctx, "e-long", []float32{1, 0}, payload("chunk-long", 1, 200)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 10, 0.8)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "chunk-long", results[0].Chunk.ChunkID)
}

func TestSearchDeterministicTieOrder(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	// Identical vectors and lengths; order must fall back to chunk index,
	// then chunk id.
	require.NoError(t, index.Upsert(ctx, "e-b", []float32{1, 0}, payload("chunk-b", 2, 100)))
	require.NoError(t, index.Upsert(ctx, "e-a", []float32{1, 0}, payload("chunk-a", 2, 100)))
	require.NoError(t, index.Upsert(ctx, "e-c", []float32{1, 0}, payload("chunk-c", 1, 100)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	for i := 0; i < 5; i++ {
		results, err := engine.Search(ctx, "query", 10, 0)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "chunk-c", results[0].Chunk.ChunkID)
		assert.Equal(t, "chunk-a", results[1].Chunk.ChunkID)
		assert.Equal(t, "chunk-b", results[2].Chunk.ChunkID)
	}
}

func TestSearchDeduplicatesByChunkID(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	require.NoError(t, index.Upsert(ctx, "e-1", []float32{1, 0}, payload("chunk-1", 0, 100)))
	require.NoError(t, index.Upsert(ctx, "e-2", []float32{0.9, 0.4359}, payload("chunk-1", 0, 100)))
	require.NoError(t, index.Upsert(ctx, "e-3", []float32{0.8, 0.6}, payload("chunk-2", 1, 100)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "chunk-1", results[0].Chunk.ChunkID)
	assert.Equal(t, "e-1", results[0].Entry.ID, "the higher scoring duplicate wins")
	assert.Equal(t, "chunk-2", results[1].Chunk.ChunkID)
}

func TestSearchLimitAndRanks(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	require.NoError(t, index.Upsert(ctx, "e-1", []float32{1, 0}, payload("chunk-1", 0, 100)))
	require.NoError(t, index.Upsert(ctx, "e-2", []float32{0.9, 0.4359}, payload("chunk-2", 1, 100)))
	require.NoError(t, index.Upsert(ctx, "e-3", []float32{0.8, 0.6}, payload("chunk-3", 2, 100)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	results, err := engine.Search(ctx, "query", 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Greater(t, results[0].Score, results[1].Score)
}

// recordingMonitor captures hook invocations for assertions.
type recordingMonitor struct {
	started    bool
	rawMatches int
	noise      []string
	penalized  []string
	duplicates []string
	finished   int
}

func (m *recordingMonitor) Start(string) { m.started = true }
func (m *recordingMonitor) AfterVectorSearch(matches []vectorindex.Match) {
	m.rawMatches = len(matches)
}
func (m *recordingMonitor) NoiseFiltered(chunkID string, _ int) { m.noise = append(m.noise, chunkID) }
func (m *recordingMonitor) ShortChunkPenalized(chunkID string, _, _ float32) {
	m.penalized = append(m.penalized, chunkID)
}
func (m *recordingMonitor) DuplicateDropped(chunkID string) {
	m.duplicates = append(m.duplicates, chunkID)
}
func (m *recordingMonitor) Finish(results []Result) { m.finished = len(results) }

func TestSearchMonitorHooks(t *testing.T) {
	ctx := context.Background()
	index := memory.NewIndex()

	require.NoError(t, index.Upsert(ctx, "e-noise", []float32{1, 0}, payload("chunk-noise", 0, 3)))
	require.NoError(t, index.Upsert(ctx, "e-short", []float32{1, 0}, payload("chunk-short", 1, 20)))
	require.NoError(t, index.Upsert(ctx, "e-dup-a", []float32{1, 0}, payload("chunk-dup", 2, 100)))
	require.NoError(t, index.Upsert(ctx, "e-dup-b", []float32{0.8, 0.6}, payload("chunk-dup", 2, 100)))

	engine := newTestEngine(t, queryEmbedder([]float32{1, 0}), index)

	monitor := &recordingMonitor{}
	results, err := engine.SearchWithMonitor(ctx, "query", 10, 0, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, 4, monitor.rawMatches)
	assert.Equal(t, []string{"chunk-noise"}, monitor.noise)
	assert.Equal(t, []string{"chunk-short"}, monitor.penalized)
	assert.Equal(t, []string{"chunk-dup"}, monitor.duplicates)
	assert.Equal(t, len(results), monitor.finished)
}
