package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/veldt/ragcore/vectorindex"
)

// Index is a memory-resident vector index using brute-force cosine
// similarity. Entries are copied on insert and published atomically under
// the index lock, so concurrent readers never observe a partially written
// entry.
type Index struct {
	mu      sync.RWMutex
	entries map[string]vectorindex.Entry
}

var _ vectorindex.Index = (*Index)(nil)

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]vectorindex.Entry)}
}

// Upsert inserts or replaces an entry. The vector and payload are copied.
func (idx *Index) Upsert(_ context.Context, id string, vector []float32, payload map[string]string) error {
	entry := vectorindex.Entry{
		ID:     id,
		Vector: append([]float32(nil), vector...),
	}
	if payload != nil {
		entry.Payload = make(map[string]string, len(payload))
		for k, v := range payload {
			entry.Payload[k] = v
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[id] = entry
	return nil
}

// Get returns the entry with the given id, and whether it exists.
func (idx *Index) Get(_ context.Context, id string) (vectorindex.Entry, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.entries[id]
	return entry, ok, nil
}

// SearchSimilar scans every entry and scores it by cosine similarity.
// An empty index returns an empty result list, not an error.
func (idx *Index) SearchSimilar(_ context.Context, vector []float32, limit int, threshold float32, filter vectorindex.Filter) ([]vectorindex.Match, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := make([]vectorindex.Match, 0, len(idx.entries))
	for _, entry := range idx.entries {
		if filter != nil && !filter(entry.Payload) {
			continue
		}
		score := vectorindex.Cosine(vector, entry.Vector)
		if score < threshold {
			continue
		}
		matches = append(matches, vectorindex.Match{Entry: entry, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.ID < matches[j].Entry.ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// List returns every entry, ordered by id.
func (idx *Index) List(_ context.Context) ([]vectorindex.Entry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entries := make([]vectorindex.Entry, 0, len(idx.entries))
	for _, entry := range idx.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// Delete removes entries by id. Unknown ids are ignored.
func (idx *Index) Delete(_ context.Context, ids ...string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, id := range ids {
		delete(idx.entries, id)
	}
	return nil
}

// Info returns the entry count and the dimension of the stored vectors.
// An empty index reports dimension 0.
func (idx *Index) Info(_ context.Context) (vectorindex.Info, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	info := vectorindex.Info{Count: len(idx.entries)}
	for _, entry := range idx.entries {
		info.Dimension = len(entry.Vector)
		break
	}
	return info, nil
}
