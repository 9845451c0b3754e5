package chunking

import (
	"regexp"
	"strings"
)

// Strategy identifies a chunking algorithm. The set is closed; adding a
// strategy means extending the enum and its dispatch, not registering a
// string lookup.
type Strategy int

const (
	// StrategyText packs paragraphs and sentences into size-bounded chunks.
	StrategyText Strategy = iota
	// StrategyProject splits on headed sections with per-section priorities
	// and timeline special-casing.
	StrategyProject
	// StrategyQA extracts question/answer pairs as retrieval units.
	StrategyQA
)

func (s Strategy) String() string {
	switch s {
	case StrategyProject:
		return "project"
	case StrategyQA:
		return "qa"
	default:
		return "text"
	}
}

// ParseStrategy maps a document type name to a Strategy.
// The name is the only parameter allowed to fall back: an unknown name
// simply reports ok=false and the caller moves on to detection.
func ParseStrategy(name string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "txt", "plain":
		return StrategyText, true
	case "project":
		return StrategyProject, true
	case "qa", "faq":
		return StrategyQA, true
	default:
		return StrategyText, false
	}
}

// Path fragments that pick a strategy before content inspection runs.
var pathHints = []struct {
	fragment string
	strategy Strategy
}{
	{"faq", StrategyQA},
	{"qa", StrategyQA},
	{"questions", StrategyQA},
	{"project", StrategyProject},
	{"roadmap", StrategyProject},
}

// Content patterns whose match counts vote for a strategy.
var (
	qaContentPattern      = regexp.MustCompile(`(?mi)^(?:q|question)\s*[:.]`)
	projectContentPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// detector selects a strategy for documents with no declared type.
type detector struct {
	minMatches int
}

// detect picks a strategy: declared type first, then source path hints,
// then content pattern counts against the configured minimum, defaulting
// to the generic text strategy.
func (d *detector) detect(docType, source, content string) Strategy {
	if s, ok := ParseStrategy(docType); ok {
		return s
	}

	lowerSource := strings.ToLower(source)
	for _, hint := range pathHints {
		if strings.Contains(lowerSource, hint.fragment) {
			return hint.strategy
		}
	}

	qaMatches := len(qaContentPattern.FindAllStringIndex(content, -1))
	projectMatches := len(projectContentPattern.FindAllStringIndex(content, -1))

	if qaMatches >= d.minMatches && qaMatches >= projectMatches {
		return StrategyQA
	}
	if projectMatches >= d.minMatches {
		return StrategyProject
	}

	return StrategyText
}
