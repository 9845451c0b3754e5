package chunking

import (
	"regexp"
	"sort"
	"strings"
)

// defaultQAPatterns match question/answer blocks: a question marker line
// followed by an answer marker line, up to a blank line or end of text.
var defaultQAPatterns = []string{
	`(?ms)^Q(?:uestion)?\s*[:.].*?^A(?:nswer)?\s*[:.].*?(?:\n\s*\n|\z)`,
}

// qaPieces scans the document against the question/answer patterns. Each
// matched pair is a candidate unit: a unit that fits within chunkSize
// becomes exactly one piece, an oversized unit is split via sentence
// packing. If no pattern matches, the whole document falls back to
// sentence packing.
func qaPieces(content string, params strategyParams) []piece {
	type span struct{ start, end int }
	var spans []span
	for _, pattern := range params.qaPatterns {
		for _, loc := range pattern.FindAllStringIndex(content, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	if len(spans) == 0 {
		return textPieces(content, params.chunkSize)
	}

	// Candidates in document order regardless of which pattern found them.
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var pieces []piece
	lastEnd := -1
	for _, sp := range spans {
		if sp.start < lastEnd {
			continue // overlapping match from a second pattern
		}
		lastEnd = sp.end

		unit := strings.TrimSpace(content[sp.start:sp.end])
		if unit == "" {
			continue
		}
		if len(unit) <= params.chunkSize {
			pieces = append(pieces, piece{content: unit})
			continue
		}
		for _, packed := range packFragments(splitSentences(unit), params.chunkSize) {
			pieces = append(pieces, piece{content: packed})
		}
	}
	return pieces
}

// compileQAPatterns compiles the configured processing patterns, falling
// back to the built-in defaults when none are configured.
func compileQAPatterns(configured []string) ([]*regexp.Regexp, error) {
	sources := configured
	if len(sources) == 0 {
		sources = defaultQAPatterns
	}

	patterns := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}
