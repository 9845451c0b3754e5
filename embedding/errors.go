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


package embedding

import "errors"

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrTrackerRequired is returned when a status tracker is not provided.
	ErrTrackerRequired = errors.New("status tracker required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrComputationFailed indicates the external embedding function failed.
	// The failure is recorded in the chunk's status before it is returned;
	// the caller may retry.
	ErrComputationFailed = errors.New("embedding computation failed")

	// ErrPersistFailed indicates the vector index rejected the write.
	// The embedding is kept in memory; the caller may retry persistence.
	ErrPersistFailed = errors.New("vector store save failed")
)
