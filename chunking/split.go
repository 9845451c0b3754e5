package chunking

import (
	"regexp"
	"strings"
	"unicode"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// splitParagraphs splits text at blank-line boundaries, trimming each
// paragraph and dropping empty ones.
func splitParagraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitSentences splits text at sentence boundaries: a run of '.', '!' or
// '?' followed by whitespace or end of text. Text with no terminator is
// returned as a single trailing sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		// Consume the whole terminator run ("?!", "...").
		j := i
		for j+1 < len(runes) && (runes[j+1] == '.' || runes[j+1] == '!' || runes[j+1] == '?') {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// packFragments greedily packs consecutive fragments into chunks, starting
// a new chunk whenever adding the next fragment would exceed size. A single
// fragment longer than size becomes its own chunk; it cannot be split
// further at this level.
func packFragments(fragments []string, size int) []string {
	var chunks []string
	var b strings.Builder

	for _, fragment := range fragments {
		if b.Len() == 0 {
			b.WriteString(fragment)
			continue
		}
		if b.Len()+1+len(fragment) > size {
			chunks = append(chunks, b.String())
			b.Reset()
			b.WriteString(fragment)
			continue
		}
		b.WriteByte(' ')
		b.WriteString(fragment)
	}

	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// packText runs the generic text algorithm: paragraphs first, sentences for
// any paragraph that would exceed size, then greedy packing.
func packText(text string, size int) []string {
	var fragments []string
	for _, paragraph := range splitParagraphs(text) {
		if len(paragraph) <= size {
			fragments = append(fragments, paragraph)
			continue
		}
		fragments = append(fragments, splitSentences(paragraph)...)
	}
	return packFragments(fragments, size)
}
