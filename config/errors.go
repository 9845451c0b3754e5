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


package config

import "errors"

var (
	// ErrMissingKey indicates a required configuration key is absent.
	// Required numeric parameters never fall back to defaults.
	ErrMissingKey = errors.New("missing required configuration key")

	// ErrInvalidValue indicates a configuration value outside its valid range.
	ErrInvalidValue = errors.New("invalid configuration value")

	// ErrStrategyNotConfigured indicates a chunking strategy with no
	// configuration section.
	ErrStrategyNotConfigured = errors.New("strategy not configured")
)
