// Copyright 2026 Veldt Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain errors
var (
	// ErrNotFound indicates that the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrEmptyDocument indicates a document with no content was submitted
	// for chunking.
	ErrEmptyDocument = errors.New("document content is empty")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrNegativeIndex indicates a chunk index below zero.
	ErrNegativeIndex = errors.New("chunk index cannot be negative")

	// ErrInvalidEmbedding indicates an Embedding failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrDimensionMismatch indicates an embedding whose declared dimension
	// does not match its vector length.
	ErrDimensionMismatch = errors.New("dimension does not match vector length")
)
