// Package status tracks the processing lifecycle of chunks.
//
// Each chunk moves through a fixed state machine:
//
//	CHUNK_LOADED -> EMBEDDING_PENDING -> EMBEDDING_PROCESSING
//	  -> EMBEDDING_COMPLETED | EMBEDDING_FAILED
//	EMBEDDING_COMPLETED -> VECTOR_STORE_PENDING -> VECTOR_STORE_PROCESSING
//	  -> VECTOR_STORE_COMPLETED | VECTOR_STORE_FAILED
//
// Failed stages are recoverable via Retry, which moves the chunk back to
// the corresponding pending stage. Completed stages reject retries.
// Transitions for one chunk are serialized; different chunks transition
// independently. Aggregate queries (counts per stage, per document,
// success rate) are served from stage-indexed sets in O(1) amortized time.
package status
