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

package pipeline

import "errors"

var (
	// ErrChunkerRequired is returned when no chunking engine is provided.
	ErrChunkerRequired = errors.New("chunking engine is required")

	// ErrStoreRequired is returned when no embedding store is provided.
	ErrStoreRequired = errors.New("embedding store is required")

	// ErrTrackerRequired is returned when no status tracker is provided.
	ErrTrackerRequired = errors.New("status tracker is required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
