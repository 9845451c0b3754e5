package vectorindex

import "context"

// Entry is a persisted vector with its payload. The entry ID is the
// embedding ID it was written under.
type Entry struct {
	ID      string
	Vector  []float32
	Payload map[string]string
}

// Match pairs an entry with its similarity score against a query vector.
type Match struct {
	Entry Entry
	Score float32
}

// Info describes the state of an index.
type Info struct {
	Count     int
	Dimension int
}

// Filter restricts a similarity search to entries whose payload it accepts.
// A nil Filter accepts every entry.
type Filter func(payload map[string]string) bool

// Index is the persistence backend for embedding vectors. The embedding
// store is the only writer; readers may run concurrently with writes and
// must never observe a partially written entry.
//
// Implementations must be safe for concurrent use.
type Index interface {
	// Upsert inserts or replaces the entry with the given id. The vector
	// and payload are copied; callers may reuse their buffers.
	Upsert(ctx context.Context, id string, vector []float32, payload map[string]string) error

	// Get returns the entry with the given id, and whether it exists.
	Get(ctx context.Context, id string) (Entry, bool, error)

	// SearchSimilar returns entries scored by cosine similarity against the
	// query vector, ordered by descending score. Entries scoring below
	// threshold are omitted. A limit <= 0 returns all matching entries.
	// A nil filter accepts every entry.
	SearchSimilar(ctx context.Context, vector []float32, limit int, threshold float32, filter Filter) ([]Match, error)

	// List returns every entry, ordered by id. The consistency validator
	// uses this to name store entries that have no in-memory embedding.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes the entries with the given ids. Unknown ids are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Info returns the entry count and vector dimension of the index.
	Info(ctx context.Context) (Info, error)
}
