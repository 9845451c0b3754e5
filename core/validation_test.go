package core

import (
	"errors"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				ID:         "c1",
				DocumentID: "d1",
				Content:    "Hello world",
				Index:      0,
			},
			wantErr: nil,
		},
		{
			name: "valid chunk with declared overlap",
			chunk: &Chunk{
				ID:         "c2",
				DocumentID: "d1",
				Content:    "Second chunk",
				Index:      1,
				Size:       500,
				Overlap:    50,
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "empty content",
			chunk: &Chunk{
				ID:         "c3",
				DocumentID: "d1",
				Content:    "",
				Index:      0,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "negative index",
			chunk: &Chunk{
				ID:         "c4",
				DocumentID: "d1",
				Content:    "Content",
				Index:      -1,
			},
			wantErr: ErrNegativeIndex,
		},
		{
			name: "missing document id",
			chunk: &Chunk{
				ID:      "c5",
				Content: "Content",
				Index:   0,
			},
			wantErr: ErrInvalidChunk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateChunk() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbedding(t *testing.T) {
	tests := []struct {
		name      string
		embedding *Embedding
		wantErr   error
	}{
		{
			name: "valid embedding",
			embedding: &Embedding{
				ID:        "e1",
				ChunkID:   "c1",
				Vector:    []float32{0.1, 0.2, 0.3},
				Dimension: 3,
			},
			wantErr: nil,
		},
		{
			name:      "nil embedding",
			embedding: nil,
			wantErr:   ErrInvalidEmbedding,
		},
		{
			name: "missing chunk id",
			embedding: &Embedding{
				ID:        "e2",
				Vector:    []float32{0.1},
				Dimension: 1,
			},
			wantErr: ErrInvalidEmbedding,
		},
		{
			name: "dimension mismatch",
			embedding: &Embedding{
				ID:        "e3",
				ChunkID:   "c1",
				Vector:    []float32{0.1, 0.2},
				Dimension: 3,
			},
			wantErr: ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbedding(tt.embedding)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEmbedding() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbedding() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFingerprintContent(t *testing.T) {
	a := FingerprintContent("the same text")
	b := FingerprintContent("the same text")
	c := FingerprintContent("different text")

	if a != b {
		t.Errorf("identical content produced different fingerprints: %d != %d", a, b)
	}
	if a == c {
		t.Errorf("different content produced identical fingerprints: %d", a)
	}
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("NewID returned empty string")
		}
		if seen[id] {
			t.Fatalf("NewID returned duplicate id %q", id)
		}
		seen[id] = true
	}
}
