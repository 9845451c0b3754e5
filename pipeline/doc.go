// Package pipeline drives documents through chunking and embedding.
//
// A bounded worker pool limits in-flight embedding calls. Each chunk gets
// its own retry budget with exponential backoff, and one failing item
// never aborts the batch: Ingest returns a summary of processed and
// failed counts with the identifier and cause of every failure.
package pipeline
