package retrieval

import "github.com/veldt/ragcore/vectorindex"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterVectorSearch(matches []vectorindex.Match)
	NoiseFiltered(chunkID string, contentLength int)
	ShortChunkPenalized(chunkID string, rawScore, adjustedScore float32)
	DuplicateDropped(chunkID string)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                             {}
func (n *noopMonitor) AfterVectorSearch(_ []vectorindex.Match)    {}
func (n *noopMonitor) NoiseFiltered(_ string, _ int)              {}
func (n *noopMonitor) ShortChunkPenalized(_ string, _, _ float32) {}
func (n *noopMonitor) DuplicateDropped(_ string)                  {}
func (n *noopMonitor) Finish(_ []Result)                          {}
