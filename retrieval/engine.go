package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/veldt/ragcore/ai"
	"github.com/veldt/ragcore/config"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/vectorindex"
)

// ChunkView is the chunk description recovered from an index entry's
// payload. It carries what retrieval and its callers need without a
// round trip to the chunk source.
type ChunkView struct {
	ChunkID       string
	DocumentID    string
	Index         int
	Size          int
	Overlap       int
	Preview       string
	ContentLength int
	ContentHash   string
	ModelName     string
}

// Result is one ranked search hit. Score is the adjusted similarity after
// any short-chunk penalty; Rank is 1-based within the returned slice.
type Result struct {
	Chunk ChunkView
	Entry vectorindex.Entry
	Score float32
	Rank  int
}

// Engine ranks stored chunks against a query by cosine similarity,
// filtering noise chunks and penalizing short ones.
type Engine struct {
	embedder ai.Embedder
	index    vectorindex.Index
	params   config.RetrievalParams
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a retrieval engine.
func NewEngine(embedder ai.Embedder, index vectorindex.Index, params config.RetrievalParams, opts ...Option) (*Engine, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	e := &Engine{
		embedder: embedder,
		index:    index,
		params:   params,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search returns up to limit chunks relevant to the query, ranked by
// adjusted similarity. Results below threshold are omitted; a limit <= 0
// means no cap. An empty index yields an empty slice, not an error.
func (e *Engine) Search(ctx context.Context, query string, limit int, threshold float32) ([]Result, error) {
	return e.SearchWithMonitor(ctx, query, limit, threshold, nil)
}

// SearchWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the search process.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, limit int, threshold float32, monitor SearchMonitor) ([]Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	vector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}

	// Fetch every raw match; filtering and the penalty run here, so the
	// index must not pre-cut on the caller's threshold.
	matches, err := e.index.SearchSimilar(ctx, vector, 0, -1, nil)
	if err != nil {
		e.logger.Error("error querying vector index", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(matches)

	candidates := make([]Result, 0, len(matches))
	for _, match := range matches {
		view := viewFromPayload(match.Entry.Payload)

		// Chunks at or below the noise floor never surface, no matter the score.
		if view.ContentLength <= e.params.MinChunkLength {
			monitor.NoiseFiltered(view.ChunkID, view.ContentLength)
			continue
		}

		score := match.Score
		if view.ContentLength <= e.params.ShortChunkThreshold {
			adjusted := score * e.params.ShortChunkPenalty
			monitor.ShortChunkPenalized(view.ChunkID, score, adjusted)
			score = adjusted
		}

		candidates = append(candidates, Result{
			Chunk: view,
			Entry: match.Entry,
			Score: score,
		})
	}

	// Order is total: adjusted score descending, then chunk index, then
	// chunk id. Equal queries always return identical rankings.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Chunk.Index != candidates[j].Chunk.Index {
			return candidates[i].Chunk.Index < candidates[j].Chunk.Index
		}
		return candidates[i].Chunk.ChunkID < candidates[j].Chunk.ChunkID
	})

	results := make([]Result, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.Score < threshold {
			// Sorted descending, nothing below can qualify.
			break
		}
		if seen[c.Chunk.ChunkID] {
			monitor.DuplicateDropped(c.Chunk.ChunkID)
			continue
		}
		seen[c.Chunk.ChunkID] = true

		c.Rank = len(results) + 1
		results = append(results, c)
		if limit > 0 && len(results) == limit {
			break
		}
	}

	monitor.Finish(results)
	e.logger.Debug("search complete", "query", query, "matches", len(matches), "results", len(results))
	return results, nil
}

func viewFromPayload(payload map[string]string) ChunkView {
	return ChunkView{
		ChunkID:       payload[core.MetaChunkID],
		DocumentID:    payload[core.MetaDocumentID],
		Index:         atoi(payload[core.MetaChunkIndex]),
		Size:          atoi(payload[core.MetaChunkSize]),
		Overlap:       atoi(payload[core.MetaChunkOverlap]),
		Preview:       payload[core.MetaContentPreview],
		ContentLength: atoi(payload[core.MetaContentLength]),
		ContentHash:   payload[core.MetaContentHash],
		ModelName:     payload[core.MetaModelName],
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
