package validation

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/vectorindex"
)

// Validation run types recorded on results.
const (
	TypeEmbeddingCreation = "embedding_creation"
	TypeVectorStoreSave   = "vector_store_save"
	TypeConsistency       = "consistency"
)

// defaultMaxMagnitude flags vectors whose norm suggests a scaling bug
// rather than a legitimate unnormalized embedding.
const defaultMaxMagnitude = 100.0

// Validator audits chunks, embeddings, and the vector index against each
// other. It never mutates any store and never returns an error: every
// finding becomes a severity-tagged issue on the returned result.
type Validator struct {
	expectedDimension int
	expectedModel     string
	maxMagnitude      float64
	logger            *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator) error

// WithExpectedDimension makes dimension mismatches an error-severity
// finding. Zero disables the check.
func WithExpectedDimension(dim int) Option {
	return func(v *Validator) error {
		v.expectedDimension = dim
		return nil
	}
}

// WithExpectedModel makes model-name mismatches a warning-severity
// finding. Empty disables the check.
func WithExpectedModel(model string) Option {
	return func(v *Validator) error {
		v.expectedModel = model
		return nil
	}
}

// WithMaxMagnitude overrides the vector norm above which a warning is
// reported. Default is 100.
func WithMaxMagnitude(max float64) Option {
	return func(v *Validator) error {
		if max > 0 {
			v.maxMagnitude = max
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// NewValidator creates a validator.
func NewValidator(opts ...Option) (*Validator, error) {
	v := &Validator{
		maxMagnitude: defaultMaxMagnitude,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ValidateEmbeddingCreation checks a chunk and the embedding produced for
// it. A nil embedding means creation failed outright.
func (v *Validator) ValidateEmbeddingCreation(chunk core.Chunk, emb *core.Embedding) *Result {
	result := newResult(TypeEmbeddingCreation, chunk.ID)

	if chunk.Content == "" {
		result.AddIssue(SeverityError, chunk.ID, "chunk %s has empty content", chunk.ID)
	}
	if chunk.Size > 0 && len(chunk.Content) > 2*chunk.Size {
		result.AddIssue(SeverityWarning, chunk.ID,
			"chunk %s content length %d exceeds twice its declared size %d", chunk.ID, len(chunk.Content), chunk.Size)
	}

	if emb == nil {
		result.AddIssue(SeverityError, chunk.ID, "no embedding produced for chunk %s", chunk.ID)
		return result.Complete()
	}

	if emb.ChunkID != chunk.ID {
		result.AddIssue(SeverityError, emb.ID,
			"embedding %s references chunk %s, expected %s", emb.ID, emb.ChunkID, chunk.ID)
	}
	v.checkVector(result, emb)
	v.checkModel(result, emb)
	v.checkContentHash(result, chunk, emb)

	return result.Complete()
}

// ValidateVectorStoreSave checks that an embedding landed in the vector
// index intact. A negative expectedCount skips the count check.
func (v *Validator) ValidateVectorStoreSave(ctx context.Context, emb *core.Embedding, index vectorindex.Index, expectedCount int) *Result {
	if emb == nil {
		result := newResult(TypeVectorStoreSave, "")
		result.AddIssue(SeverityError, "", "no embedding to verify")
		return result.Complete()
	}

	result := newResult(TypeVectorStoreSave, emb.ID)

	entry, ok, err := index.Get(ctx, emb.ID)
	switch {
	case err != nil:
		result.AddIssue(SeverityWarning, emb.ID, "vector store unreachable: %v", err)
	case !ok:
		result.AddIssue(SeverityError, emb.ID, "embedding %s missing from the vector store", emb.ID)
	default:
		if len(entry.Vector) != len(emb.Vector) {
			result.AddIssue(SeverityError, emb.ID,
				"stored vector for %s has dimension %d, expected %d", emb.ID, len(entry.Vector), len(emb.Vector))
		}
		if got := entry.Payload[core.MetaChunkID]; got != emb.ChunkID {
			result.AddIssue(SeverityWarning, emb.ID,
				"stored payload for %s names chunk %q, expected %q", emb.ID, got, emb.ChunkID)
		}
	}

	if expectedCount >= 0 {
		if info, err := index.Info(ctx); err == nil && info.Count != expectedCount {
			result.AddIssue(SeverityWarning, emb.ID,
				"vector store holds %d entries, expected %d", info.Count, expectedCount)
			result.Metadata["store_count"] = strconv.Itoa(info.Count)
		}
	}

	return result.Complete()
}

// ValidateConsistency cross-checks chunks, embeddings, and the vector
// index as a whole.
func (v *Validator) ValidateConsistency(ctx context.Context, chunks []core.Chunk, embeddings []*core.Embedding, index vectorindex.Index) *Result {
	result := newResult(TypeConsistency, "")
	result.Metadata["chunk_count"] = strconv.Itoa(len(chunks))
	result.Metadata["embedding_count"] = strconv.Itoa(len(embeddings))

	byChunk := make(map[string]*core.Embedding, len(embeddings))
	for _, emb := range embeddings {
		if emb == nil {
			continue
		}
		byChunk[emb.ChunkID] = emb
	}
	chunkIDs := make(map[string]core.Chunk, len(chunks))
	for _, chunk := range chunks {
		chunkIDs[chunk.ID] = chunk
	}

	if len(chunks) != len(embeddings) {
		result.AddIssue(SeverityWarning, "",
			"chunk count %d does not match embedding count %d", len(chunks), len(embeddings))
	}

	// Every chunk needs an embedding, every embedding a chunk.
	for _, chunk := range chunks {
		if _, ok := byChunk[chunk.ID]; !ok {
			result.AddIssue(SeverityError, chunk.ID, "chunk %s has no embedding", chunk.ID)
		}
	}
	for _, emb := range embeddings {
		if emb == nil {
			continue
		}
		if _, ok := chunkIDs[emb.ChunkID]; !ok {
			result.AddIssue(SeverityError, emb.ID,
				"embedding %s is orphaned: no chunk %s", emb.ID, emb.ChunkID)
		}
	}

	// Every in-memory embedding must be retrievable from the store whole.
	for _, emb := range embeddings {
		if emb == nil {
			continue
		}
		entry, ok, err := index.Get(ctx, emb.ID)
		if err != nil {
			result.AddIssue(SeverityWarning, emb.ID, "vector store unreachable: %v", err)
			continue
		}
		if !ok {
			result.AddIssue(SeverityError, emb.ID, "embedding %s missing from the vector store", emb.ID)
			continue
		}
		if len(entry.Vector) != len(emb.Vector) {
			result.AddIssue(SeverityError, emb.ID,
				"stored vector for %s has dimension %d, expected %d", emb.ID, len(entry.Vector), len(emb.Vector))
		}
		if chunk, ok := chunkIDs[emb.ChunkID]; ok {
			v.checkContentHash(result, chunk, emb)
		}
	}

	// Every store entry must trace back to an in-memory embedding.
	if entries, err := index.List(ctx); err != nil {
		result.AddIssue(SeverityWarning, "", "vector store unreachable: %v", err)
	} else {
		known := make(map[string]bool, len(embeddings))
		for _, emb := range embeddings {
			if emb != nil {
				known[emb.ID] = true
			}
		}
		for _, entry := range entries {
			if !known[entry.ID] {
				result.AddIssue(SeverityError, entry.ID,
					"vector store entry %s has no embedding (chunk %q)", entry.ID, entry.Payload[core.MetaChunkID])
			}
		}
	}

	if info, err := index.Info(ctx); err == nil {
		result.Metadata["store_count"] = strconv.Itoa(info.Count)
		if info.Count != len(embeddings) {
			result.AddIssue(SeverityWarning, "",
				"vector store holds %d entries, expected %d", info.Count, len(embeddings))
		}
	}

	v.logger.Debug("consistency validation complete",
		"chunks", len(chunks), "embeddings", len(embeddings), "issues", len(result.Issues))
	return result.Complete()
}

func (v *Validator) checkVector(result *Result, emb *core.Embedding) {
	if len(emb.Vector) == 0 {
		result.AddIssue(SeverityError, emb.ID, "embedding %s has an empty vector", emb.ID)
		return
	}
	if emb.Dimension != len(emb.Vector) {
		result.AddIssue(SeverityError, emb.ID,
			"embedding %s declares dimension %d but carries %d components", emb.ID, emb.Dimension, len(emb.Vector))
	}
	if v.expectedDimension > 0 && len(emb.Vector) != v.expectedDimension {
		result.AddIssue(SeverityError, emb.ID,
			"embedding %s has dimension %d, expected %d", emb.ID, len(emb.Vector), v.expectedDimension)
	}

	norm := float64(vectorindex.Norm(emb.Vector))
	if norm == 0 {
		result.AddIssue(SeverityError, emb.ID, "embedding %s has a zero-norm vector", emb.ID)
	} else if norm > v.maxMagnitude {
		result.AddIssue(SeverityWarning, emb.ID,
			"embedding %s has magnitude %.2f, above the %.2f ceiling", emb.ID, norm, v.maxMagnitude)
	}
}

func (v *Validator) checkModel(result *Result, emb *core.Embedding) {
	if v.expectedModel != "" && emb.ModelName != v.expectedModel {
		result.AddIssue(SeverityWarning, emb.ID,
			"embedding %s produced by model %q, expected %q", emb.ID, emb.ModelName, v.expectedModel)
	}
}

// checkContentHash flags chunks whose content changed after embedding.
// The fingerprint in metadata was taken at embedding time.
func (v *Validator) checkContentHash(result *Result, chunk core.Chunk, emb *core.Embedding) {
	stored, ok := emb.Metadata[core.MetaContentHash]
	if !ok {
		return
	}
	current := strconv.FormatUint(uint64(core.FingerprintContent(chunk.Content)), 16)
	if stored != current {
		result.AddIssue(SeverityWarning, chunk.ID,
			"chunk %s content changed since embedding %s was computed", chunk.ID, emb.ID)
	}
}
