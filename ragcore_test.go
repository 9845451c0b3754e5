package ragcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt/ragcore/ai/mock"
	"github.com/veldt/ragcore/config"
	"github.com/veldt/ragcore/core"
	"github.com/veldt/ragcore/status"
	"github.com/veldt/ragcore/validation"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()

	system, err := NewSystem(config.Default(), WithEmbedder(mock.NewEmbedder()))
	require.NoError(t, err)
	t.Cleanup(system.Close)
	return system
}

func TestNewSystemRejectsInvalidConfig(t *testing.T) {
	_, err := NewSystem(&config.Config{}, WithEmbedder(mock.NewEmbedder()))
	assert.ErrorIs(t, err, config.ErrMissingKey)
}

func TestSystemEndToEnd(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	docs := []core.Document{
		{ID: "doc-go", Content: "Go compiles quickly and deploys as a single binary.", Source: "go.txt", Type: "text"},
		{ID: "doc-db", Content: "The database shards rows across storage nodes.", Source: "db.txt", Type: "text"},
	}

	summary, err := system.Ingest(ctx, docs...)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Embedded)
	assert.Equal(t, 0, summary.Failed)

	assert.Len(t, system.Chunks(), 2)
	assert.Equal(t, 2, system.Tracker().CountByStage(status.StageVectorStoreCompleted))
	assert.Equal(t, 1.0, system.Tracker().SuccessRate())

	results, err := system.Search(ctx, "single binary deployment", 5, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	for i, r := range results {
		assert.Equal(t, i+1, r.Rank)
	}

	audit := system.Audit(ctx)
	assert.Equal(t, validation.StatusPassed, audit.Status)
}

func TestSystemIngestRecordsDocumentFailures(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	summary, err := system.Ingest(ctx,
		core.Document{ID: "doc-good", Content: "A perfectly fine document.", Source: "good.txt", Type: "text"},
		core.Document{ID: "doc-empty", Content: "   ", Source: "empty.txt", Type: "text"},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Embedded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "doc-empty", summary.Failures[0].DocumentID)
	assert.ErrorIs(t, summary.Failures[0].Err, core.ErrEmptyDocument)

	// Only the surviving document's chunks are retained for auditing.
	require.Len(t, system.Chunks(), 1)
	assert.Equal(t, "doc-good", system.Chunks()[0].DocumentID)
}

func TestSystemAuditFlagsMissingEmbedding(t *testing.T) {
	system := newTestSystem(t)
	ctx := context.Background()

	_, err := system.Ingest(ctx, core.Document{ID: "doc-1", Content: "Some content here.", Source: "a.txt", Type: "text"})
	require.NoError(t, err)

	// Wipe the store behind the system's back; the audit must notice.
	require.NoError(t, system.Store().RemoveAll(ctx))

	audit := system.Audit(ctx)
	assert.Equal(t, validation.StatusFailed, audit.Status)
}
