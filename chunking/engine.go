package chunking

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/veldt/ragcore/config"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/status"
)

// strategyParams are the resolved parameters one strategy runs with.
type strategyParams struct {
	chunkSize         int
	chunkOverlap      int
	preserveStructure bool
	sectionPriorities map[string]int
	qaPatterns        []*regexp.Regexp
}

// Engine splits documents into retrievable chunks. It exclusively owns
// chunk creation: every produced chunk gets a unique id, a per-document
// contiguous index, and a status row at CHUNK_LOADED.
type Engine struct {
	params   map[Strategy]strategyParams
	tracker  *status.Tracker
	detector detector
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMinPatternMatches sets how many content pattern matches strategy
// detection requires before it picks a non-text strategy. Default is 2.
func WithMinPatternMatches(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			n = 1
		}
		e.detector.minMatches = n
		return nil
	}
}

// NewEngine creates a chunking engine from validated configuration.
// Every strategy must have a configuration section with the required
// numeric parameters; a missing section or an uncompilable processing
// pattern fails construction rather than silently defaulting.
func NewEngine(cfg *config.Config, tracker *status.Tracker, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}

	e := &Engine{
		params:   make(map[Strategy]strategyParams, 3),
		tracker:  tracker,
		detector: detector{minMatches: 2},
		logger:   slog.Default(),
	}

	for _, s := range []Strategy{StrategyText, StrategyProject, StrategyQA} {
		sp, err := cfg.Strategy(s.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		params := strategyParams{
			chunkSize:         sp.ChunkSize,
			chunkOverlap:      sp.ChunkOverlap,
			preserveStructure: sp.PreserveStructure,
			sectionPriorities: lowerKeys(sp.SectionPriorities),
		}
		if s == StrategyQA {
			patterns, err := compileQAPatterns(sp.ProcessingPatterns)
			if err != nil {
				return nil, fmt.Errorf("%w: qa processing pattern: %w", ErrInvalidConfig, err)
			}
			params.qaPatterns = patterns
		}
		e.params[s] = params
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Chunk splits a document into an ordered sequence of chunks and registers
// each one with the status tracker at CHUNK_LOADED. Chunk indices are
// contiguous from 0 across all sections of the document. An empty document
// yields core.ErrEmptyDocument.
func (e *Engine) Chunk(doc core.Document) ([]core.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("%w: document %s", core.ErrEmptyDocument, doc.ID)
	}

	strategy := e.detector.detect(doc.Type, doc.Source, doc.Content)
	params := e.params[strategy]

	var pieces []piece
	switch strategy {
	case StrategyProject:
		pieces = projectPieces(doc.Content, params)
	case StrategyQA:
		pieces = qaPieces(doc.Content, params)
	default:
		pieces = textPieces(doc.Content, params.chunkSize)
	}

	now := time.Now().UTC()
	chunks := make([]core.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunk := core.Chunk{
			ID:         core.NewID(),
			DocumentID: doc.ID,
			Content:    p.content,
			Index:      i,
			Size:       params.chunkSize,
			Overlap:    params.chunkOverlap,
			Section:    p.section,
			CreatedAt:  now,
		}
		if err := core.ValidateChunk(&chunk); err != nil {
			return nil, err
		}

		if _, err := e.tracker.Register(chunk.ID, chunk.DocumentID); err != nil {
			e.logger.Warn("failed to register chunk status", "chunkID", chunk.ID, "err", err)
		}
		chunks = append(chunks, chunk)
	}

	e.logger.Debug("document chunked",
		"documentID", doc.ID, "strategy", strategy.String(), "chunks", len(chunks))
	return chunks, nil
}

// ChunkAll splits every document, continuing past individual failures.
// Returns the chunks of all successful documents; the error joins the
// per-document failures, if any.
func (e *Engine) ChunkAll(docs []core.Document) ([]core.Chunk, error) {
	var chunks []core.Chunk
	var errs []error

	for _, doc := range docs {
		dc, err := e.Chunk(doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("document %s: %w", doc.ID, err))
			continue
		}
		chunks = append(chunks, dc...)
	}

	return chunks, errors.Join(errs...)
}

// Detect returns the strategy that would be used for a document without
// chunking it.
func (e *Engine) Detect(doc core.Document) Strategy {
	return e.detector.detect(doc.Type, doc.Source, doc.Content)
}

func lowerKeys(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
