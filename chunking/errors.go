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


package chunking

import "errors"

var (
	// ErrConfigRequired is returned when a configuration is not provided.
	ErrConfigRequired = errors.New("configuration required")

	// ErrTrackerRequired is returned when a status tracker is not provided.
	ErrTrackerRequired = errors.New("status tracker required")

	// ErrInvalidConfig indicates malformed strategy configuration, such as
	// an uncompilable processing pattern.
	ErrInvalidConfig = errors.New("invalid chunking configuration")
)
