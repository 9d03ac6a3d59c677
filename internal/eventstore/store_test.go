package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"
)

const testRunID = "run-123"

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndByRun(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	built, err := NewPlanBuilt(testRunID, "sample", "c2", "c1", []string{"docs/a.md"})
	require.NoError(t, err)
	built.EventMetadata = map[string]string{"key": "value"}
	require.NoError(t, store.Append(ctx, built))

	other, err := NewPlanBuilt("run-other", "sample", "c2", "c1", nil)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, other))

	events, err := store.ByRun(ctx, testRunID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.NotZero(t, e.ID())
	assert.Equal(t, TypePlanBuilt, e.Type())
	assert.Equal(t, "sample", e.Repository())
	assert.Equal(t, "value", e.Metadata()["key"])
	assert.JSONEq(t, `{"head_commit":"c2","cursor":"c1","pending_files":["docs/a.md"]}`, string(e.Payload()))
}

func TestSQLiteStore_RecentNewestFirst(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	for _, repo := range []string{"a", "b", "c"} {
		e, err := NewCursorAdvanced(testRunID, repo, "", "c1")
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, e))
	}

	events, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].Repository())
	assert.Equal(t, "b", events[1].Repository())
}

func TestSQLiteStore_Range(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	e, err := NewRunStarted(testRunID, "dry-run", []string{"sample"})
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, e))

	events, err := store.Range(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = store.Range(ctx, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	e, err := NewHandoffPublished(testRunID, "sample", "c1", 2, "log")
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), e))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	events, err := reopened.ByRun(t.Context(), testRunID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, TypeHandoffPublished, events[0].Type())
}

func TestSQLiteStore_AppendAfterCloseIsClassified(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	e, err := NewRunStarted(testRunID, "execute", nil)
	require.NoError(t, err)
	err = store.Append(t.Context(), e)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEventAppendFailed)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryEventStore))
}
