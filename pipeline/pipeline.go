package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/veldt/ragcore/chunking"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/embedding"
	"github.com/veldt/ragcore/status"
)

// Failure describes one item the pipeline could not process. ChunkID is
// empty when chunking a whole document failed.
type Failure struct {
	DocumentID string
	ChunkID    string
	Err        error
}

// Summary reports the outcome of one Ingest call. A failed item never
// aborts its siblings, so Failed and Embedded can both be non-zero.
type Summary struct {
	Documents int
	Chunks    int
	Embedded  int
	Failed    int
	Failures  []Failure
}

// Pipeline drives documents through chunking and embedding with a bounded
// worker pool. Embedding failures are retried with exponential backoff
// before being reported as failures.
type Pipeline struct {
	chunker     *chunking.Engine
	store       *embedding.Store
	tracker     *status.Tracker
	pool        *ants.Pool
	maxAttempts int
	retryDelay  time.Duration

	progressWriter   io.Writer
	progressInterval int

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRetry sets the per-chunk retry policy. Defaults are 3 attempts with
// a 1 second base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithProgress reports ingestion progress to the writer every interval
// chunks. Disabled by default.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progressWriter = w
		p.progressInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(chunker *chunking.Engine, store *embedding.Store, tracker *status.Tracker, opts ...Option) (*Pipeline, error) {
	if chunker == nil {
		return nil, ErrChunkerRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunker:     chunker,
		store:       store,
		tracker:     tracker,
		pool:        pool,
		maxAttempts: 3,
		retryDelay:  time.Second,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest chunks the documents and embeds every chunk concurrently,
// waiting for the whole batch. One failing document or chunk never aborts
// its siblings; the summary carries per-item outcomes.
func (p *Pipeline) Ingest(ctx context.Context, docs ...core.Document) (*Summary, error) {
	summary := &Summary{Documents: len(docs)}

	chunks := p.ChunkDocuments(docs, summary)
	p.EmbedChunks(ctx, chunks, summary)

	p.logger.Info("ingest complete",
		"documents", summary.Documents, "chunks", summary.Chunks,
		"embedded", summary.Embedded, "failed", summary.Failed)
	return summary, nil
}

// ChunkDocuments chunks the documents, recording per-document failures in
// summary. A document that fails to chunk is skipped, never fatal.
func (p *Pipeline) ChunkDocuments(docs []core.Document, summary *Summary) []core.Chunk {
	var all []core.Chunk
	for _, doc := range docs {
		chunks, err := p.chunker.Chunk(doc)
		if err != nil {
			p.logger.Error("chunking failed", "documentID", doc.ID, "err", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{DocumentID: doc.ID, Err: err})
			continue
		}
		all = append(all, chunks...)
	}
	return all
}

// EmbedChunks embeds already chunked content through the worker pool,
// accumulating outcomes into summary. Callers that chunk documents
// themselves use this directly.
func (p *Pipeline) EmbedChunks(ctx context.Context, chunks []core.Chunk, summary *Summary) {
	summary.Chunks += len(chunks)

	var progress *ProgressTracker
	if p.progressWriter != nil {
		progress = NewProgressTracker(p.progressWriter, len(chunks), p.progressInterval)
		progress.Start()
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, chunk := range chunks {
		chunk := chunk

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			err := p.embedChunk(ctx, chunk)

			mu.Lock()
			if err != nil {
				summary.Failed++
				summary.Failures = append(summary.Failures, Failure{
					DocumentID: chunk.DocumentID,
					ChunkID:    chunk.ID,
					Err:        err,
				})
			} else {
				summary.Embedded++
			}
			mu.Unlock()

			if err != nil {
				p.logger.Error("embedding failed", "documentID", chunk.DocumentID, "chunkID", chunk.ID, "err", err)
			}
			if progress != nil {
				progress.Increment(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{DocumentID: chunk.DocumentID, ChunkID: chunk.ID, Err: submitErr})
			mu.Unlock()
		}
	}

	wg.Wait()
	if progress != nil {
		progress.Finish()
	}
}

// embedChunk embeds one chunk under the retry policy. A failed vector
// index save on an earlier attempt is replayed without recomputing the
// embedding.
func (p *Pipeline) embedChunk(ctx context.Context, chunk core.Chunk) error {
	attempt := 0
	return RetryWithBackoff(ctx, func() error {
		attempt++
		if attempt > 1 {
			// Move the chunk out of its failed stage before retrying.
			if err := p.tracker.Retry(chunk.ID); err != nil && !errors.Is(err, status.ErrNotRetryable) {
				return err
			}
		}

		if _, err := p.store.GetByChunk(chunk.ID); err == nil {
			if st, err := p.tracker.Get(chunk.ID); err == nil && st.Stage == status.StageVectorStoreCompleted {
				return nil
			}
			// The embedding exists; only the index save is outstanding.
			return p.store.Persist(ctx, chunk.ID)
		}
		_, err := p.store.Embed(ctx, chunk)
		return err
	}, p.maxAttempts, p.retryDelay)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
