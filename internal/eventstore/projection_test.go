package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvent(t *testing.T) func(*BaseEvent, error) *BaseEvent {
	return func(e *BaseEvent, err error) *BaseEvent {
		t.Helper()
		require.NoError(t, err)
		return e
	}
}

func TestRunHistoryProjection_Apply(t *testing.T) {
	must := mustEvent(t)
	p := NewRunHistoryProjection(newMemoryStore(t), 10)

	p.Apply(must(NewRunStarted(testRunID, "execute", []string{"a", "b"})))
	p.Apply(must(NewPlanBuilt(testRunID, "a", "c2", "c1", []string{"x.md", "y.md"})))
	p.Apply(must(NewPlanBuilt(testRunID, "b", "d1", "d1", nil)))
	p.Apply(must(NewCursorAdvanced(testRunID, "a", "c1", "c2")))

	s, ok := p.Run(testRunID)
	require.True(t, ok)
	assert.Equal(t, "execute", s.Mode)
	assert.Equal(t, "running", s.Status)
	assert.Equal(t, 2, s.Planned)
	assert.Equal(t, 2, s.PendingFiles)
	assert.Equal(t, []string{"a"}, s.Advanced)

	p.Apply(must(NewRunCompleted(testRunID, "completed", time.Second)))
	s, _ = p.Run(testRunID)
	assert.Equal(t, "completed", s.Status)
	assert.NotNil(t, s.CompletedAt)
}

func TestRunHistoryProjection_FailedRun(t *testing.T) {
	must := mustEvent(t)
	p := NewRunHistoryProjection(newMemoryStore(t), 10)
	p.Apply(must(NewRunStarted(testRunID, "execute", []string{"a"})))
	p.Apply(must(NewPlanFailed(testRunID, "a", "plan", "history diverged")))
	p.Apply(must(NewRunCompleted(testRunID, "completed", time.Second)))

	s, _ := p.Run(testRunID)
	assert.Equal(t, "failed", s.Status)
	assert.Equal(t, []string{"a"}, s.Failed)
}

func TestRunHistoryProjection_RebuildFromStore(t *testing.T) {
	must := mustEvent(t)
	store := newMemoryStore(t)
	ctx := t.Context()

	first := must(NewRunStarted("run-1", "dry-run", nil))
	first.EventTimestamp = time.Now().Add(-time.Minute)
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, must(NewRunStarted("run-2", "execute", nil))))
	require.NoError(t, store.Append(ctx, must(NewRunCompleted("run-2", "completed", 0))))

	p := NewRunHistoryProjection(store, 1)
	require.NoError(t, p.Rebuild(ctx))

	history := p.History()
	require.Len(t, history, 1)
	assert.Equal(t, "run-2", history[0].RunID)
	assert.Equal(t, "completed", history[0].Status)

	_, ok := p.Run("run-1")
	assert.True(t, ok)
	_, ok = p.Run("missing")
	assert.False(t, ok)
}
