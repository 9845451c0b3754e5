package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyConfig holds the raw per-strategy chunking parameters as parsed
// from YAML. ChunkSize and ChunkOverlap are pointers so a missing key can be
// distinguished from an explicit zero; both are required.
type StrategyConfig struct {
	ChunkSize          *int           `yaml:"chunk_size"`
	ChunkOverlap       *int           `yaml:"chunk_overlap"`
	PreserveStructure  bool           `yaml:"preserve_structure"`
	SectionPriorities  map[string]int `yaml:"section_priorities,omitempty"`
	ProcessingPatterns []string       `yaml:"processing_patterns,omitempty"`
}

// RetrievalConfig holds the raw retrieval parameters. All three keys are
// required; the filter length and the penalty threshold are deliberately
// distinct settings.
type RetrievalConfig struct {
	MinChunkLength      *int     `yaml:"min_chunk_length"`
	ShortChunkThreshold *int     `yaml:"short_chunk_threshold"`
	ShortChunkPenalty   *float32 `yaml:"short_chunk_penalty"`
}

// PipelineConfig holds batch driver parameters. All fields are optional.
type PipelineConfig struct {
	Workers      int `yaml:"workers"`
	MaxRetries   int `yaml:"max_retries"`
	RetryDelayMS int `yaml:"retry_delay_ms"`
}

// RetryDelay returns the configured base retry delay.
func (p PipelineConfig) RetryDelay() time.Duration {
	return time.Duration(p.RetryDelayMS) * time.Millisecond
}

// EmbeddingConfig holds embedding store parameters. All fields are optional.
type EmbeddingConfig struct {
	Model         string `yaml:"model"`
	PreviewLength int    `yaml:"preview_length"`
}

// Config is the root configuration for the retrieval core.
type Config struct {
	Strategies map[string]StrategyConfig `yaml:"strategies"`
	Retrieval  RetrievalConfig           `yaml:"retrieval"`
	Pipeline   PipelineConfig            `yaml:"pipeline"`
	Embedding  EmbeddingConfig           `yaml:"embedding"`
}

// StrategyParams are the validated chunking parameters for one strategy.
type StrategyParams struct {
	ChunkSize          int
	ChunkOverlap       int
	PreserveStructure  bool
	SectionPriorities  map[string]int
	ProcessingPatterns []string
}

// RetrievalParams are the validated retrieval quality parameters.
type RetrievalParams struct {
	MinChunkLength      int
	ShortChunkThreshold int
	ShortChunkPenalty   float32
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyOptionalDefaults()
	return &cfg, nil
}

// Validate checks that every required key is present and in range.
// Missing required numeric keys fail loading; they never default.
func (c *Config) Validate() error {
	if len(c.Strategies) == 0 {
		return fmt.Errorf("%w: strategies", ErrMissingKey)
	}

	for name, sc := range c.Strategies {
		if sc.ChunkSize == nil {
			return fmt.Errorf("%w: strategies.%s.chunk_size", ErrMissingKey, name)
		}
		if *sc.ChunkSize <= 0 {
			return fmt.Errorf("%w: strategies.%s.chunk_size must be positive, got %d",
				ErrInvalidValue, name, *sc.ChunkSize)
		}
		if sc.ChunkOverlap == nil {
			return fmt.Errorf("%w: strategies.%s.chunk_overlap", ErrMissingKey, name)
		}
		if *sc.ChunkOverlap < 0 {
			return fmt.Errorf("%w: strategies.%s.chunk_overlap cannot be negative, got %d",
				ErrInvalidValue, name, *sc.ChunkOverlap)
		}
		if *sc.ChunkOverlap >= *sc.ChunkSize {
			return fmt.Errorf("%w: strategies.%s.chunk_overlap (%d) must be smaller than chunk_size (%d)",
				ErrInvalidValue, name, *sc.ChunkOverlap, *sc.ChunkSize)
		}
	}

	r := c.Retrieval
	if r.MinChunkLength == nil {
		return fmt.Errorf("%w: retrieval.min_chunk_length", ErrMissingKey)
	}
	if *r.MinChunkLength < 0 {
		return fmt.Errorf("%w: retrieval.min_chunk_length cannot be negative", ErrInvalidValue)
	}
	if r.ShortChunkThreshold == nil {
		return fmt.Errorf("%w: retrieval.short_chunk_threshold", ErrMissingKey)
	}
	if *r.ShortChunkThreshold < 0 {
		return fmt.Errorf("%w: retrieval.short_chunk_threshold cannot be negative", ErrInvalidValue)
	}
	if r.ShortChunkPenalty == nil {
		return fmt.Errorf("%w: retrieval.short_chunk_penalty", ErrMissingKey)
	}
	if *r.ShortChunkPenalty <= 0 || *r.ShortChunkPenalty >= 1 {
		return fmt.Errorf("%w: retrieval.short_chunk_penalty must be in (0, 1), got %f",
			ErrInvalidValue, *r.ShortChunkPenalty)
	}

	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("%w: pipeline.workers cannot be negative", ErrInvalidValue)
	}

	return nil
}

// applyOptionalDefaults fills optional fields only. Required keys are
// checked by Validate and never defaulted here.
func (c *Config) applyOptionalDefaults() {
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = runtime.NumCPU() / 2
		if c.Pipeline.Workers < 1 {
			c.Pipeline.Workers = 1
		}
	}
	if c.Pipeline.MaxRetries == 0 {
		c.Pipeline.MaxRetries = 3
	}
	if c.Pipeline.RetryDelayMS == 0 {
		c.Pipeline.RetryDelayMS = 1000
	}
	if c.Embedding.PreviewLength == 0 {
		c.Embedding.PreviewLength = 200
	}
}

// Strategy returns the validated parameters for the named strategy.
// Returns ErrStrategyNotConfigured if no section exists for the name.
func (c *Config) Strategy(name string) (StrategyParams, error) {
	sc, ok := c.Strategies[name]
	if !ok {
		return StrategyParams{}, fmt.Errorf("%w: %s", ErrStrategyNotConfigured, name)
	}
	return StrategyParams{
		ChunkSize:          *sc.ChunkSize,
		ChunkOverlap:       *sc.ChunkOverlap,
		PreserveStructure:  sc.PreserveStructure,
		SectionPriorities:  sc.SectionPriorities,
		ProcessingPatterns: sc.ProcessingPatterns,
	}, nil
}

// RetrievalParams returns the validated retrieval parameters.
func (c *Config) RetrievalParams() RetrievalParams {
	return RetrievalParams{
		MinChunkLength:      *c.Retrieval.MinChunkLength,
		ShortChunkThreshold: *c.Retrieval.ShortChunkThreshold,
		ShortChunkPenalty:   *c.Retrieval.ShortChunkPenalty,
	}
}

// Default returns a fully populated configuration suitable for tests and
// local runs. Every required key is set explicitly.
func Default() *Config {
	cfg := &Config{
		Strategies: map[string]StrategyConfig{
			"text": {
				ChunkSize:    intp(500),
				ChunkOverlap: intp(50),
			},
			"project": {
				ChunkSize:         intp(600),
				ChunkOverlap:      intp(50),
				PreserveStructure: true,
				SectionPriorities: map[string]int{
					"overview":     1,
					"timeline":     2,
					"architecture": 3,
				},
			},
			"qa": {
				ChunkSize:    intp(400),
				ChunkOverlap: intp(0),
			},
		},
		Retrieval: RetrievalConfig{
			MinChunkLength:      intp(10),
			ShortChunkThreshold: intp(50),
			ShortChunkPenalty:   float32p(0.7),
		},
		Embedding: EmbeddingConfig{
			Model: "embeddinggemma",
		},
	}
	cfg.applyOptionalDefaults()
	return cfg
}

func intp(v int) *int             { return &v }
func float32p(v float32) *float32 { return &v }
