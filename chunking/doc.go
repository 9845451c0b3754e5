// Package chunking splits documents into retrievable chunks.
//
// Three strategies cover the supported document shapes:
//
//   - text: paragraph-first splitting with sentence packing for oversized
//     paragraphs
//   - project: heading-delimited sections ordered by a priority table, with
//     Timeline sections split into one chunk per dated entry
//   - qa: question/answer pairs extracted by configurable patterns
//
// Strategy selection uses the declared document type when present, then
// source path hints, then content pattern counts, defaulting to text.
// Chunk overlap is recorded as declared metadata only; no content is
// duplicated between adjacent chunks.
package chunking
