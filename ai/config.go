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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for embedding service providers.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// Model is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	Model string
}

// DefaultConfig returns a configuration targeting a local OpenAI-compatible
// embedding server.
func DefaultConfig() *Config {
	return &Config{
		Host:  "http://localhost:11434/v1",
		Model: "embeddinggemma",
	}
}

// Validate checks that the configuration has the required fields set.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("embedding host required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("embedding model required")
	}
	return nil
}
