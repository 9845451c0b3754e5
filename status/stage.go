package status

// Stage is a named point in a chunk's processing lifecycle.
type Stage int

const (
	// StageChunkLoaded is the initial stage, set when a chunk is created.
	StageChunkLoaded Stage = iota + 1
	// StageEmbeddingPending marks a chunk queued for embedding.
	StageEmbeddingPending
	// StageEmbeddingProcessing marks a chunk whose embedding is being computed.
	StageEmbeddingProcessing
	// StageEmbeddingCompleted marks a chunk with a stored embedding.
	StageEmbeddingCompleted
	// StageEmbeddingFailed marks a failed embedding computation. Recoverable
	// via Retry.
	StageEmbeddingFailed
	// StageVectorStorePending marks an embedding queued for persistence.
	StageVectorStorePending
	// StageVectorStoreProcessing marks an embedding being written to the
	// vector index.
	StageVectorStoreProcessing
	// StageVectorStoreCompleted is the terminal success stage.
	StageVectorStoreCompleted
	// StageVectorStoreFailed marks a failed vector index write. Recoverable
	// via Retry.
	StageVectorStoreFailed
)

var stageNames = map[Stage]string{
	StageChunkLoaded:           "CHUNK_LOADED",
	StageEmbeddingPending:      "EMBEDDING_PENDING",
	StageEmbeddingProcessing:   "EMBEDDING_PROCESSING",
	StageEmbeddingCompleted:    "EMBEDDING_COMPLETED",
	StageEmbeddingFailed:       "EMBEDDING_FAILED",
	StageVectorStorePending:    "VECTOR_STORE_PENDING",
	StageVectorStoreProcessing: "VECTOR_STORE_PROCESSING",
	StageVectorStoreCompleted:  "VECTOR_STORE_COMPLETED",
	StageVectorStoreFailed:     "VECTOR_STORE_FAILED",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether s is a defined lifecycle stage.
func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// Failed reports whether s is a failure stage recoverable via Retry.
func (s Stage) Failed() bool {
	return s == StageEmbeddingFailed || s == StageVectorStoreFailed
}

// Completed reports whether s is a completion stage. Retry requests from
// completed stages are always rejected.
func (s Stage) Completed() bool {
	return s == StageEmbeddingCompleted || s == StageVectorStoreCompleted
}

// transitions defines the allowed (current, requested) stage pairs.
// Every pair not listed here is invalid.
var transitions = map[Stage][]Stage{
	StageChunkLoaded:           {StageEmbeddingPending},
	StageEmbeddingPending:      {StageEmbeddingProcessing},
	StageEmbeddingProcessing:   {StageEmbeddingCompleted, StageEmbeddingFailed},
	StageEmbeddingCompleted:    {StageVectorStorePending},
	StageEmbeddingFailed:       {StageEmbeddingPending},
	StageVectorStorePending:    {StageVectorStoreProcessing},
	StageVectorStoreProcessing: {StageVectorStoreCompleted, StageVectorStoreFailed},
	StageVectorStoreCompleted:  {},
	StageVectorStoreFailed:     {StageVectorStorePending},
}

// CanTransition reports whether the lifecycle allows moving from one stage
// to another.
func CanTransition(from, to Stage) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// retryTarget returns the stage a failed chunk returns to on retry.
// Only failed stages have a retry target.
var retryTarget = map[Stage]Stage{
	StageEmbeddingFailed:   StageEmbeddingPending,
	StageVectorStoreFailed: StageVectorStorePending,
}
