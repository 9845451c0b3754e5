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


package status

import "errors"

var (
	// ErrInvalidTransition indicates a requested stage transition that is not
	// part of the processing lifecycle. The tracked state is left unchanged.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrNotRetryable indicates a retry request for a chunk that is not in a
	// failed stage.
	ErrNotRetryable = errors.New("stage is not retryable")

	// ErrAlreadyTracked indicates an attempt to register a chunk that already
	// has a status row.
	ErrAlreadyTracked = errors.New("chunk already tracked")

	// ErrUnknownStage indicates a stage value outside the defined lifecycle.
	ErrUnknownStage = errors.New("unknown stage")
)
