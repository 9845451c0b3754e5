// Package ai defines the embedding function collaborator consumed by the
// retrieval core.
//
// The core does not implement any embedding model itself; it talks to an
// Embedder through this narrow interface. The openai subpackage provides an
// adapter for OpenAI-compatible endpoints, and the mock subpackage provides
// a deterministic test double.
package ai
