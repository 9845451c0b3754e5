// Package validation audits chunks, embeddings, and the vector index
// against each other without mutating any of them.
//
// Every check appends a severity-tagged issue to a Result instead of
// returning an error, so callers always get a full report. A result is
// frozen by Complete, which derives PASSED, WARNING, or FAILED from the
// collected issues.
package validation
