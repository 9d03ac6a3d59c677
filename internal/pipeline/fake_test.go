package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"git.home.luguber.info/inful/pivot/internal/changes"
	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/eventstore"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/notify"
	"git.home.luguber.info/inful/pivot/internal/state"
)

// fakeTree serves a fixed history. Each Head call pops the next entry of heads
// until one remains.
type fakeTree struct {
	heads   []string
	tracked []string
	diffs   map[string][]string // key "from..to"
	headErr error
}

func newFakeTree(head string, tracked ...string) *fakeTree {
	return &fakeTree{heads: []string{head}, tracked: tracked, diffs: map[string][]string{}}
}

func (f *fakeTree) Head() (string, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	h := f.heads[0]
	if len(f.heads) > 1 {
		f.heads = f.heads[1:]
	}
	return h, nil
}

func (f *fakeTree) DiffNames(from, to string) ([]string, error) {
	d, ok := f.diffs[from+".."+to]
	if !ok {
		return nil, fmt.Errorf("diff %s..%s: %w", from, to, changes.ErrUnknownCommit)
	}
	return d, nil
}

func (f *fakeTree) ListTracked() ([]string, error) { return f.tracked, nil }

// memStore is an in-memory CursorStore.
type memStore struct {
	mu     sync.Mutex
	states map[string]state.RepositoryState
	setErr error
	sets   int
}

func newMemStore() *memStore { return &memStore{states: map[string]state.RepositoryState{}} }

func (m *memStore) Get(name string) state.RepositoryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[name]
	if !ok {
		return state.NeverProcessed()
	}
	return st
}

func (m *memStore) Set(name string, st state.RepositoryState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.states[name] = st
	return nil
}

type fakeHandoff struct {
	published []notify.PlanReady
	err       error
}

func (h *fakeHandoff) Publish(_ context.Context, msg notify.PlanReady) error {
	if h.err != nil {
		return h.err
	}
	h.published = append(h.published, msg)
	return nil
}

func (h *fakeHandoff) Target() string { return "fake" }

type memEvents struct {
	events []eventstore.Event
}

func (m *memEvents) Append(_ context.Context, e eventstore.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *memEvents) types() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type())
	}
	return out
}

type outcomeRecorder struct {
	metrics.NoopRecorder
	outcomes map[string]metrics.OutcomeLabel
	advances int
	syncs    int
}

func newOutcomeRecorder() *outcomeRecorder {
	return &outcomeRecorder{outcomes: map[string]metrics.OutcomeLabel{}}
}

func (r *outcomeRecorder) IncPlanOutcome(repo string, o metrics.OutcomeLabel) { r.outcomes[repo] = o }
func (r *outcomeRecorder) IncCursorAdvance(string)                            { r.advances++ }
func (r *outcomeRecorder) ObserveSyncDuration(string, time.Duration, bool)    { r.syncs++ }

func repo(name string) config.Repository {
	return config.Repository{Name: name, URL: "https://example.com/" + name + ".git", Branch: "main", DocsPath: "docs"}
}

// treeSyncer hands out fixed trees by repository name.
func treeSyncer(trees map[string]changes.Tree) SyncerFunc {
	return func(_ context.Context, r config.Repository) (changes.Tree, error) {
		t, ok := trees[r.Name]
		if !ok {
			return nil, errors.New("no such repository")
		}
		return t, nil
	}
}
