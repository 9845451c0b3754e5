package status

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veldt/ragcore/core"
)

// ProcessingStatus records the lifecycle stage of a single chunk.
// One status row exists per chunk; it is mutated only through Tracker
// transitions.
type ProcessingStatus struct {
	ID         string
	ChunkID    string
	DocumentID string
	Stage      Stage
	Error      string
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *ProcessingStatus) clone() *ProcessingStatus {
	out := *s
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// entry pairs a status row with the mutex serializing its transitions.
type entry struct {
	mu     sync.Mutex
	status *ProcessingStatus
}

// Tracker records the lifecycle stage of each chunk and enforces the
// processing state machine. Transitions for one chunk are serialized;
// different chunks transition independently. Aggregate queries are served
// from stage- and document-indexed sets, not full scans.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*entry             // chunk id -> entry
	byStage map[Stage]map[string]struct{} // stage -> chunk ids
	byDoc   map[string]map[string]struct{} // document id -> chunk ids
	logger  *slog.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
	}
}

// NewTracker creates an empty status tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		entries: make(map[string]*entry),
		byStage: make(map[Stage]map[string]struct{}),
		byDoc:   make(map[string]map[string]struct{}),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TransitionOption attaches details to a transition.
type TransitionOption func(*ProcessingStatus)

// WithError records the failure cause on the status row.
func WithError(msg string) TransitionOption {
	return func(s *ProcessingStatus) {
		s.Error = msg
	}
}

// WithMetadata attaches a free-form key/value pair to the status row.
func WithMetadata(key, value string) TransitionOption {
	return func(s *ProcessingStatus) {
		if s.Metadata == nil {
			s.Metadata = make(map[string]string)
		}
		s.Metadata[key] = value
	}
}

// Register creates a status row for a newly created chunk at
// StageChunkLoaded. Returns ErrAlreadyTracked if the chunk already has a
// status row.
func (t *Tracker) Register(chunkID, documentID string) (*ProcessingStatus, error) {
	if chunkID == "" {
		return nil, fmt.Errorf("chunk id required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[chunkID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTracked, chunkID)
	}

	now := time.Now().UTC()
	st := &ProcessingStatus{
		ID:         core.NewID(),
		ChunkID:    chunkID,
		DocumentID: documentID,
		Stage:      StageChunkLoaded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t.entries[chunkID] = &entry{status: st}
	t.indexLocked(chunkID, documentID, StageChunkLoaded)

	t.logger.Debug("chunk registered", "chunkID", chunkID, "documentID", documentID)
	return st.clone(), nil
}

// Transition moves a chunk to the requested stage. An invalid
// (current, requested) pair fails with ErrInvalidTransition and leaves the
// state unchanged. Each successful transition updates UpdatedAt and applies
// the given options.
func (t *Tracker) Transition(chunkID string, to Stage, opts ...TransitionOption) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStage, to)
	}

	e, err := t.entry(chunkID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.status.Stage
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s (chunk %s)", ErrInvalidTransition, from, to, chunkID)
	}

	e.status.Stage = to
	e.status.UpdatedAt = time.Now().UTC()
	if !to.Failed() {
		e.status.Error = ""
	}
	for _, opt := range opts {
		opt(e.status)
	}

	t.reindex(chunkID, from, to)
	t.logger.Debug("stage transition", "chunkID", chunkID, "from", from.String(), "to", to.String())
	return nil
}

// Retry moves a failed chunk back to its pending stage:
// EMBEDDING_FAILED -> EMBEDDING_PENDING, VECTOR_STORE_FAILED ->
// VECTOR_STORE_PENDING. Any other retry request is rejected with
// ErrNotRetryable.
func (t *Tracker) Retry(chunkID string) error {
	e, err := t.entry(chunkID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.status.Stage
	to, ok := retryTarget[from]
	if !ok {
		return fmt.Errorf("%w: %s (chunk %s)", ErrNotRetryable, from, chunkID)
	}

	e.status.Stage = to
	e.status.UpdatedAt = time.Now().UTC()

	t.reindex(chunkID, from, to)
	t.logger.Debug("stage retried", "chunkID", chunkID, "from", from.String(), "to", to.String())
	return nil
}

// Get returns a copy of the status row for a chunk.
// Returns core.ErrNotFound if the chunk is not tracked.
func (t *Tracker) Get(chunkID string) (*ProcessingStatus, error) {
	e, err := t.entry(chunkID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status.clone(), nil
}

// CountByStage returns the number of chunks currently at the given stage.
func (t *Tracker) CountByStage(stage Stage) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byStage[stage])
}

// Counts returns the number of chunks at every occupied stage.
func (t *Tracker) Counts() map[Stage]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[Stage]int, len(t.byStage))
	for stage, ids := range t.byStage {
		if len(ids) > 0 {
			counts[stage] = len(ids)
		}
	}
	return counts
}

// Total returns the number of tracked chunks.
func (t *Tracker) Total() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// ByStage returns copies of all status rows at the given stage.
func (t *Tracker) ByStage(stage Stage) []*ProcessingStatus {
	t.mu.RLock()
	ids := make([]string, 0, len(t.byStage[stage]))
	for id := range t.byStage[stage] {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	return t.collect(ids)
}

// ByDocument returns copies of all status rows for chunks of a document.
func (t *Tracker) ByDocument(documentID string) []*ProcessingStatus {
	t.mu.RLock()
	ids := make([]string, 0, len(t.byDoc[documentID]))
	for id := range t.byDoc[documentID] {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	return t.collect(ids)
}

// SuccessRate returns the fraction of tracked chunks that reached the
// terminal VECTOR_STORE_COMPLETED stage. Returns 0 when nothing is tracked.
func (t *Tracker) SuccessRate() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	total := len(t.entries)
	if total == 0 {
		return 0
	}
	return float64(len(t.byStage[StageVectorStoreCompleted])) / float64(total)
}

func (t *Tracker) entry(chunkID string) (*entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[chunkID]
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s", core.ErrNotFound, chunkID)
	}
	return e, nil
}

func (t *Tracker) collect(ids []string) []*ProcessingStatus {
	out := make([]*ProcessingStatus, 0, len(ids))
	for _, id := range ids {
		if st, err := t.Get(id); err == nil {
			out = append(out, st)
		}
	}
	return out
}

func (t *Tracker) indexLocked(chunkID, documentID string, stage Stage) {
	if t.byStage[stage] == nil {
		t.byStage[stage] = make(map[string]struct{})
	}
	t.byStage[stage][chunkID] = struct{}{}

	if documentID != "" {
		if t.byDoc[documentID] == nil {
			t.byDoc[documentID] = make(map[string]struct{})
		}
		t.byDoc[documentID][chunkID] = struct{}{}
	}
}

// reindex moves a chunk between stage sets. The document index is stable
// across transitions and is not touched.
func (t *Tracker) reindex(chunkID string, from, to Stage) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.byStage[from], chunkID)
	if t.byStage[to] == nil {
		t.byStage[to] = make(map[string]struct{})
	}
	t.byStage[to][chunkID] = struct{}{}
}
