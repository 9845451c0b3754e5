package chunking

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic sentences",
			text: "The system is fast. It is also reliable.",
			want: []string{"The system is fast.", "It is also reliable."},
		},
		{
			name: "mixed terminators",
			text: "Is it fast? Yes! Very fast.",
			want: []string{"Is it fast?", "Yes!", "Very fast."},
		},
		{
			name: "terminator run stays together",
			text: "Really?! Sure... Fine.",
			want: []string{"Really?!", "Sure...", "Fine."},
		},
		{
			name: "no terminator yields single sentence",
			text: "no punctuation here",
			want: []string{"no punctuation here"},
		},
		{
			name: "trailing text without terminator",
			text: "First sentence. trailing fragment",
			want: []string{"First sentence.", "trailing fragment"},
		},
		{
			name: "period not followed by whitespace is not a boundary",
			text: "Version 1.2 shipped. It works.",
			want: []string{"Version 1.2 shipped.", "It works."},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph\nstill second.\n\n\n  \nThird."
	want := []string{"First paragraph.", "Second paragraph\nstill second.", "Third."}

	got := splitParagraphs(text)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitParagraphs() = %q, want %q", got, want)
	}
}

func TestPackFragments(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		size      int
		want      []string
	}{
		{
			name:      "fragments that fit pack together",
			fragments: []string{"one two", "three"},
			size:      20,
			want:      []string{"one two three"},
		},
		{
			name:      "new chunk when next fragment would exceed size",
			fragments: []string{"The system is fast.", "It is also reliable."},
			size:      20,
			want:      []string{"The system is fast.", "It is also reliable."},
		},
		{
			name:      "oversized fragment becomes its own chunk",
			fragments: []string{"short", "this fragment is far longer than the limit", "end"},
			size:      10,
			want:      []string{"short", "this fragment is far longer than the limit", "end"},
		},
		{
			name:      "empty input",
			fragments: nil,
			size:      10,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := packFragments(tt.fragments, tt.size)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("packFragments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPackText(t *testing.T) {
	// A paragraph within size stays whole; an oversized one is split at
	// sentence boundaries and repacked.
	text := "Short paragraph.\n\nFirst long sentence of the second paragraph. Second long sentence of the second paragraph."
	got := packText(text, 60)

	want := []string{
		"Short paragraph.",
		"First long sentence of the second paragraph.",
		"Second long sentence of the second paragraph.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("packText() = %q, want %q", got, want)
	}
}
