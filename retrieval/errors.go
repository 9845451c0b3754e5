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

package retrieval

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrIndexRequired is returned when no vector index is provided.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrEmptyQuery is returned when the query is empty or whitespace.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrQueryEmbedding is returned when embedding the query fails.
	ErrQueryEmbedding = errors.New("query embedding failed")
)
