// Package embedding turns chunks into vector embeddings and writes them to
// the vector index.
//
// The Store guarantees at most one embedding computation per chunk id: a
// repeated Embed call, or a concurrent one, returns the stored embedding
// without invoking the external embedding function again. Every attempt
// drives the chunk's processing status through the tracker, so a failed
// computation or a failed index write leaves the chunk in a retryable
// failed stage rather than silently lost.
package embedding
