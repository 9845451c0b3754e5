package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/veldt/ragcore/ai"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/status"
	"github.com/veldt/ragcore/vectorindex"
)

// Store turns chunks into embeddings exactly once each and is the only
// writer of the vector index.
//
// At-most-one rule: before computing, the store looks up any existing
// embedding for the chunk id and returns it unchanged, so the external
// embedding function is never invoked twice for the same chunk. The
// check-compute-store sequence is atomic per chunk id via per-key locking,
// which keeps the guarantee under concurrent Embed calls.
type Store struct {
	embedder  ai.Embedder
	tracker   *status.Tracker
	index     vectorindex.Index
	modelName string
	preview   int

	mu      sync.RWMutex
	byChunk map[string]*core.Embedding
	byID    map[string]*core.Embedding
	inFly   map[string]*sync.Mutex // per-chunk computation locks

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithModelName records the embedding model identifier on produced
// embeddings. Default is "unknown".
func WithModelName(name string) Option {
	return func(s *Store) error {
		if name != "" {
			s.modelName = name
		}
		return nil
	}
}

// WithPreviewLength sets how many bytes of chunk content are copied into
// embedding metadata. Default is 200.
func WithPreviewLength(n int) Option {
	return func(s *Store) error {
		if n > 0 {
			s.preview = n
		}
		return nil
	}
}

// NewStore creates an embedding store.
func NewStore(embedder ai.Embedder, tracker *status.Tracker, index vectorindex.Index, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	s := &Store{
		embedder:  embedder,
		tracker:   tracker,
		index:     index,
		modelName: "unknown",
		preview:   200,
		byChunk:   make(map[string]*core.Embedding),
		byID:      make(map[string]*core.Embedding),
		inFly:     make(map[string]*sync.Mutex),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Embed returns the embedding for a chunk, computing it if none exists.
// A repeated call for the same chunk id returns the stored embedding
// without invoking the embedding function again.
//
// Status transitions: EMBEDDING_PENDING -> EMBEDDING_PROCESSING ->
// EMBEDDING_COMPLETED, then VECTOR_STORE_PENDING -> VECTOR_STORE_PROCESSING
// -> VECTOR_STORE_COMPLETED once the vector index write lands. Failures are
// recorded as the corresponding *_FAILED stage before the error returns.
func (s *Store) Embed(ctx context.Context, chunk core.Chunk) (*core.Embedding, error) {
	if err := core.ValidateChunk(&chunk); err != nil {
		return nil, err
	}

	lock := s.chunkLock(chunk.ID)
	lock.Lock()
	defer lock.Unlock()

	if existing := s.lookupByChunk(chunk.ID); existing != nil {
		s.logger.Debug("embedding already exists", "chunkID", chunk.ID, "embeddingID", existing.ID)
		return cloneEmbedding(existing), nil
	}

	if err := s.beginEmbedding(chunk); err != nil {
		return nil, err
	}

	vector, err := s.embedder.EmbedText(ctx, chunk.Content)
	if err != nil {
		s.recordFailure(chunk.ID, status.StageEmbeddingFailed, err)
		return nil, fmt.Errorf("%w: chunk %s: %w", ErrComputationFailed, chunk.ID, err)
	}

	emb := s.buildEmbedding(chunk, vector)

	s.mu.Lock()
	s.byChunk[chunk.ID] = emb
	s.byID[emb.ID] = emb
	s.mu.Unlock()

	if err := s.tracker.Transition(chunk.ID, status.StageEmbeddingCompleted); err != nil {
		s.logger.Warn("status transition failed", "chunkID", chunk.ID, "err", err)
	}

	if err := s.persist(ctx, emb); err != nil {
		return cloneEmbedding(emb), err
	}
	return cloneEmbedding(emb), nil
}

// EmbedMany embeds chunks sequentially, continuing past individual
// failures. Returns the successful embeddings; the error joins the
// per-chunk failures, if any. Concurrent batch driving lives in the
// pipeline package.
func (s *Store) EmbedMany(ctx context.Context, chunks []core.Chunk) ([]*core.Embedding, error) {
	var out []*core.Embedding
	var errs []error

	for _, chunk := range chunks {
		emb, err := s.Embed(ctx, chunk)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, emb)
	}
	return out, errors.Join(errs...)
}

// Get returns a copy of the embedding with the given id.
// Returns core.ErrNotFound for unknown ids.
func (s *Store) Get(embeddingID string) (*core.Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emb, ok := s.byID[embeddingID]
	if !ok {
		return nil, fmt.Errorf("%w: embedding %s", core.ErrNotFound, embeddingID)
	}
	return cloneEmbedding(emb), nil
}

// GetByChunk returns a copy of the embedding for the given chunk id.
// Returns core.ErrNotFound if the chunk has no embedding.
func (s *Store) GetByChunk(chunkID string) (*core.Embedding, error) {
	if emb := s.lookupByChunk(chunkID); emb != nil {
		return cloneEmbedding(emb), nil
	}
	return nil, fmt.Errorf("%w: no embedding for chunk %s", core.ErrNotFound, chunkID)
}

// All returns a copy of every stored embedding. The validator consumes this.
func (s *Store) All() []*core.Embedding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Embedding, 0, len(s.byID))
	for _, emb := range s.byID {
		out = append(out, cloneEmbedding(emb))
	}
	return out
}

// Count returns the number of stored embeddings.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Persist retries the vector index write for a chunk whose embedding exists
// but whose save previously failed. The caller moves the chunk back to
// VECTOR_STORE_PENDING via the tracker's Retry before calling.
func (s *Store) Persist(ctx context.Context, chunkID string) error {
	emb := s.lookupByChunk(chunkID)
	if emb == nil {
		return fmt.Errorf("%w: no embedding for chunk %s", core.ErrNotFound, chunkID)
	}
	return s.persist(ctx, emb)
}

// RemoveAll deletes every embedding from memory and from the vector index.
func (s *Store) RemoveAll(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	s.byChunk = make(map[string]*core.Embedding)
	s.byID = make(map[string]*core.Embedding)
	s.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	return s.index.Delete(ctx, ids...)
}

// beginEmbedding drives the chunk into EMBEDDING_PROCESSING, registering it
// with the tracker if the chunking engine has not already.
func (s *Store) beginEmbedding(chunk core.Chunk) error {
	st, err := s.tracker.Get(chunk.ID)
	if errors.Is(err, core.ErrNotFound) {
		if st, err = s.tracker.Register(chunk.ID, chunk.DocumentID); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	// A chunk arriving fresh from the chunking engine still sits at
	// CHUNK_LOADED; one arriving through a retry is already pending.
	if st.Stage == status.StageChunkLoaded {
		if err := s.tracker.Transition(chunk.ID, status.StageEmbeddingPending); err != nil {
			return err
		}
	}
	return s.tracker.Transition(chunk.ID, status.StageEmbeddingProcessing)
}

func (s *Store) buildEmbedding(chunk core.Chunk, vector []float32) *core.Embedding {
	preview := chunk.Content
	if len(preview) > s.preview {
		preview = preview[:s.preview]
	}

	trimmedLen := len(strings.TrimSpace(chunk.Content))

	return &core.Embedding{
		ID:        core.NewID(),
		ChunkID:   chunk.ID,
		Vector:    vector,
		ModelName: s.modelName,
		Dimension: len(vector),
		Metadata: map[string]string{
			core.MetaDocumentID:     chunk.DocumentID,
			core.MetaChunkID:        chunk.ID,
			core.MetaChunkIndex:     strconv.Itoa(chunk.Index),
			core.MetaChunkSize:      strconv.Itoa(chunk.Size),
			core.MetaChunkOverlap:   strconv.Itoa(chunk.Overlap),
			core.MetaContentPreview: preview,
			core.MetaContentLength:  strconv.Itoa(trimmedLen),
			core.MetaContentHash:    strconv.FormatUint(uint64(core.FingerprintContent(chunk.Content)), 16),
			core.MetaModelName:      s.modelName,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// persist writes the embedding to the vector index, driving the
// VECTOR_STORE_* stages. The entry becomes visible to readers only after
// the index publishes it whole.
func (s *Store) persist(ctx context.Context, emb *core.Embedding) error {
	// A first save arrives at EMBEDDING_COMPLETED; a retried save is
	// already back at VECTOR_STORE_PENDING.
	if st, err := s.tracker.Get(emb.ChunkID); err == nil && st.Stage == status.StageEmbeddingCompleted {
		if err := s.tracker.Transition(emb.ChunkID, status.StageVectorStorePending); err != nil {
			s.logger.Warn("status transition failed", "chunkID", emb.ChunkID, "err", err)
		}
	}
	if err := s.tracker.Transition(emb.ChunkID, status.StageVectorStoreProcessing); err != nil {
		s.logger.Warn("status transition failed", "chunkID", emb.ChunkID, "err", err)
	}

	if err := s.index.Upsert(ctx, emb.ID, emb.Vector, emb.Metadata); err != nil {
		s.recordFailure(emb.ChunkID, status.StageVectorStoreFailed, err)
		return fmt.Errorf("%w: embedding %s: %w", ErrPersistFailed, emb.ID, err)
	}

	if err := s.tracker.Transition(emb.ChunkID, status.StageVectorStoreCompleted); err != nil {
		s.logger.Warn("status transition failed", "chunkID", emb.ChunkID, "err", err)
	}

	s.logger.Debug("embedding persisted", "chunkID", emb.ChunkID, "embeddingID", emb.ID, "dimension", emb.Dimension)
	return nil
}

func (s *Store) recordFailure(chunkID string, stage status.Stage, cause error) {
	if err := s.tracker.Transition(chunkID, stage, status.WithError(cause.Error())); err != nil {
		s.logger.Warn("failed to record failure status", "chunkID", chunkID, "err", err)
	}
}

// cloneEmbedding copies an embedding so callers cannot mutate the stored
// vector or metadata behind the store's back.
func cloneEmbedding(emb *core.Embedding) *core.Embedding {
	out := *emb
	out.Vector = append([]float32(nil), emb.Vector...)
	if emb.Metadata != nil {
		out.Metadata = make(map[string]string, len(emb.Metadata))
		for k, v := range emb.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

func (s *Store) lookupByChunk(chunkID string) *core.Embedding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byChunk[chunkID]
}

func (s *Store) chunkLock(chunkID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.inFly[chunkID]
	if !ok {
		lock = &sync.Mutex{}
		s.inFly[chunkID] = lock
	}
	return lock
}
