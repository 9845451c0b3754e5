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

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Index must not be negative
//   - DocumentID must be set
//
// NOT validated:
//   - Size/Overlap (declared strategy parameters, advisory only)
//   - ID (assigned by the chunking engine)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativeIndex)
	}

	if chunk.DocumentID == "" {
		return fmt.Errorf("%w: document id required", ErrInvalidChunk)
	}

	return nil
}

// ValidateEmbedding validates an Embedding according to domain rules.
//
// Validation rules:
//   - ChunkID must be set
//   - Dimension must equal the vector length
//
// NOT validated:
//   - Vector magnitude (a validator concern, never corrected here)
func ValidateEmbedding(embedding *Embedding) error {
	if embedding == nil {
		return fmt.Errorf("%w: embedding is nil", ErrInvalidEmbedding)
	}

	if embedding.ChunkID == "" {
		return fmt.Errorf("%w: chunk id required", ErrInvalidEmbedding)
	}

	if embedding.Dimension != len(embedding.Vector) {
		return fmt.Errorf("%w: %w (dimension %d, vector length %d)",
			ErrInvalidEmbedding, ErrDimensionMismatch, embedding.Dimension, len(embedding.Vector))
	}

	return nil
}
