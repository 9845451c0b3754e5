package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Fingerprint is a content-derived identifier for text.
// Identical content always produces an identical fingerprint.
type Fingerprint uint64

// FingerprintContent computes a deterministic fingerprint from text content
// using BLAKE2b hashing. It is used to detect content drift between a chunk
// and the embedding that was computed from it.
func FingerprintContent(text string) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// NewID generates a globally unique identifier for domain entities.
func NewID() string {
	return uuid.NewString()
}

// Document is a text document loaded by an external source.
// It is immutable once chunked for a given run. Type drives chunking
// strategy selection and may be empty, in which case the strategy is
// detected from the source path and content.
type Document struct {
	ID      string
	Content string
	Source  string
	Type    string
}

// Chunk is a contiguous retrievable unit of a document's text.
//
// Invariants:
//   - Content is non-empty
//   - Index >= 0, and chunks of one document produced by one chunking run
//     have contiguous indices starting at 0
//   - Size and Overlap are the declared strategy parameters, not measured
//     properties of Content; Overlap is advisory and no content is
//     duplicated between adjacent chunks
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Index      int
	Size       int
	Overlap    int
	Section    string // optional section label, set by the project strategy
	CreatedAt  time.Time
}

// Embedding is the vector representation of a chunk.
//
// At most one non-deleted Embedding exists per chunk at any time.
// Dimension always equals len(Vector). Vectors are stored as produced by
// the embedding function; they are not normalized or otherwise corrected.
type Embedding struct {
	ID        string
	ChunkID   string
	Vector    []float32
	ModelName string
	Dimension int
	Metadata  map[string]string
	CreatedAt time.Time
}

// Metadata keys copied from a chunk onto its embedding so downstream
// readers can reconstruct a lightweight chunk view without re-reading
// the original document store.
const (
	MetaDocumentID     = "document_id"
	MetaChunkID        = "chunk_id"
	MetaChunkIndex     = "chunk_index"
	MetaChunkSize      = "chunk_size"
	MetaChunkOverlap   = "chunk_overlap"
	MetaContentPreview = "content_preview"
	MetaContentLength  = "content_length"
	MetaContentHash    = "content_hash"
	MetaModelName      = "model_name"
)
