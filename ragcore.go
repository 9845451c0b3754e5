// Copyright 2026 Veldt Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ragcore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/veldt/ragcore/ai"
	"github.com/veldt/ragcore/ai/openai"
	"github.com/veldt/ragcore/chunking"
	"github.com/veldt/ragcore/config"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/embedding"
	"github.com/veldt/ragcore/pipeline"
	"github.com/veldt/ragcore/retrieval"
	"github.com/veldt/ragcore/status"
	"github.com/veldt/ragcore/validation"
	"github.com/veldt/ragcore/vectorindex"
	"github.com/veldt/ragcore/vectorindex/memory"
)

// System wires the chunking engine, embedding store, retrieval engine,
// status tracker, and validator into one ready-to-use unit.
type System struct {
	cfg       *config.Config
	tracker   *status.Tracker
	chunker   *chunking.Engine
	store     *embedding.Store
	retriever *retrieval.Engine
	validator *validation.Validator
	index     vectorindex.Index
	pipe      *pipeline.Pipeline
	logger    *slog.Logger

	mu     sync.RWMutex
	chunks map[string]core.Chunk
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	embedder ai.Embedder
	index    vectorindex.Index
	aiConfig *ai.Config
	logger   *slog.Logger
}

// WithEmbedder supplies the embedding function. Default is an
// OpenAI-compatible client built from the AI configuration.
func WithEmbedder(embedder ai.Embedder) SystemOption {
	return func(o *systemOptions) {
		o.embedder = embedder
	}
}

// WithIndex supplies the vector index backend. Default is the in-memory
// index.
func WithIndex(index vectorindex.Index) SystemOption {
	return func(o *systemOptions) {
		o.index = index
	}
}

// WithAIConfig sets the AI service configuration used when no embedder is
// supplied directly.
func WithAIConfig(cfg *ai.Config) SystemOption {
	return func(o *systemOptions) {
		o.aiConfig = cfg
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SystemOption {
	return func(o *systemOptions) {
		o.logger = logger
	}
}

// NewSystem builds a complete retrieval core from the configuration.
func NewSystem(cfg *config.Config, opts ...SystemOption) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if cfg.Embedding.Model != "" {
		options.aiConfig.Model = cfg.Embedding.Model
	}

	embedder := options.embedder
	if embedder == nil {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	index := options.index
	if index == nil {
		index = memory.NewIndex()
	}

	tracker := status.NewTracker(status.WithLogger(options.logger))

	chunker, err := chunking.NewEngine(cfg, tracker, chunking.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	store, err := embedding.NewStore(embedder, tracker, index,
		embedding.WithLogger(options.logger),
		embedding.WithModelName(options.aiConfig.Model),
		embedding.WithPreviewLength(cfg.Embedding.PreviewLength),
	)
	if err != nil {
		return nil, err
	}

	retriever, err := retrieval.NewEngine(embedder, index, cfg.RetrievalParams(),
		retrieval.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	validator, err := validation.NewValidator(
		validation.WithExpectedModel(options.aiConfig.Model),
		validation.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.Pipeline.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	pipe, err := pipeline.NewPipeline(chunker, store, tracker,
		pipeline.WithPoolSize(cfg.Pipeline.Workers),
		pipeline.WithRetry(maxRetries, cfg.Pipeline.RetryDelay()),
		pipeline.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	return &System{
		cfg:       cfg,
		tracker:   tracker,
		chunker:   chunker,
		store:     store,
		retriever: retriever,
		validator: validator,
		index:     index,
		pipe:      pipe,
		logger:    options.logger,
		chunks:    make(map[string]core.Chunk),
	}, nil
}

// Ingest chunks and embeds the documents, returning per-item outcomes.
// Produced chunks are retained so Audit can cross-check them later.
func (s *System) Ingest(ctx context.Context, docs ...core.Document) (*pipeline.Summary, error) {
	summary := &pipeline.Summary{Documents: len(docs)}

	chunks := s.pipe.ChunkDocuments(docs, summary)

	s.mu.Lock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	s.mu.Unlock()

	s.pipe.EmbedChunks(ctx, chunks, summary)

	s.logger.Info("ingest complete",
		"documents", summary.Documents, "chunks", summary.Chunks,
		"embedded", summary.Embedded, "failed", summary.Failed)
	return summary, nil
}

// Search returns up to limit chunks relevant to the query, ranked by
// adjusted similarity, omitting results below threshold.
func (s *System) Search(ctx context.Context, query string, limit int, threshold float32) ([]retrieval.Result, error) {
	return s.retriever.Search(ctx, query, limit, threshold)
}

// Audit cross-checks every ingested chunk against the embedding store and
// the vector index.
func (s *System) Audit(ctx context.Context) *validation.Result {
	return s.validator.ValidateConsistency(ctx, s.Chunks(), s.store.All(), s.index)
}

// Chunks returns every chunk ingested so far.
func (s *System) Chunks() []core.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		out = append(out, chunk)
	}
	return out
}

// Chunker exposes the chunking engine.
func (s *System) Chunker() *chunking.Engine {
	return s.chunker
}

// Tracker exposes the processing status tracker.
func (s *System) Tracker() *status.Tracker {
	return s.tracker
}

// Store exposes the embedding store.
func (s *System) Store() *embedding.Store {
	return s.store
}

// Index exposes the vector index backend.
func (s *System) Index() vectorindex.Index {
	return s.index
}

// Close releases the worker pool. The system should not be used after
// calling Close.
func (s *System) Close() {
	s.pipe.Release()
}
