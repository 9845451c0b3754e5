package chunking

import (
	"regexp"
	"sort"
	"strings"
)

// defaultSectionPriority is assigned to sections absent from the priority
// table. Lower values are chunked first.
const defaultSectionPriority = 100

var (
	headingLine  = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*$`)
	timelineYear = regexp.MustCompile(`^\s*(?:19|20)\d{2}\b`)
)

// section is a labelled slice of a project document.
type section struct {
	label    string
	body     string
	priority int
	order    int
}

// piece is a chunk-sized unit of content with its originating section.
type piece struct {
	content string
	section string
}

// projectPieces splits a project document into headed sections, orders them
// by priority, and chunks each one. Timeline sections produce one piece per
// time entry; every other section falls back to sentence packing.
func projectPieces(content string, params strategyParams) []piece {
	if !params.preserveStructure {
		return textPieces(content, params.chunkSize)
	}

	sections := parseSections(content, params.sectionPriorities)

	var pieces []piece
	for _, sec := range sections {
		if isTimelineSection(sec.label) {
			for _, entry := range timelineEntries(sec.body) {
				pieces = append(pieces, piece{content: entry, section: sec.label})
			}
			continue
		}
		for _, packed := range packText(sec.body, params.chunkSize) {
			pieces = append(pieces, piece{content: packed, section: sec.label})
		}
	}
	return pieces
}

// parseSections walks the document line by line, cutting a new section at
// every heading marker. Content before the first heading becomes an
// unlabelled preamble section.
func parseSections(content string, priorities map[string]int) []section {
	var sections []section
	var current section
	var body strings.Builder

	flush := func() {
		current.body = strings.TrimSpace(body.String())
		if current.body != "" {
			current.priority = sectionPriority(current.label, priorities)
			current.order = len(sections)
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		if m := headingLine.FindStringSubmatch(line); m != nil {
			flush()
			current = section{label: m[1]}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	// Stable order: priority first, document order within equal priority.
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].priority != sections[j].priority {
			return sections[i].priority < sections[j].priority
		}
		return sections[i].order < sections[j].order
	})
	return sections
}

func sectionPriority(label string, priorities map[string]int) int {
	if p, ok := priorities[strings.ToLower(label)]; ok {
		return p
	}
	return defaultSectionPriority
}

func isTimelineSection(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), "timeline")
}

// timelineEntries splits a timeline body at line boundaries: every line
// beginning with a 4-digit year token starts a new entry, and continuation
// lines attach to the entry above them.
func timelineEntries(body string) []string {
	var entries []string
	var current strings.Builder

	flush := func() {
		if entry := strings.TrimSpace(current.String()); entry != "" {
			entries = append(entries, entry)
		}
		current.Reset()
	}

	for _, line := range strings.Split(body, "\n") {
		if timelineYear.MatchString(line) {
			flush()
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()

	return entries
}

// textPieces runs the generic text algorithm and wraps the output in
// unlabelled pieces.
func textPieces(content string, size int) []piece {
	packed := packText(content, size)
	pieces := make([]piece, 0, len(packed))
	for _, p := range packed {
		pieces = append(pieces, piece{content: p})
	}
	return pieces
}
