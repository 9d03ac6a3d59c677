package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pivot/internal/changes"
	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/git"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/state"
)

func TestBuildPlan_NoCursorListsTrackedDocs(t *testing.T) {
	store := newMemStore()
	rec := newOutcomeRecorder()
	p := NewPlanner(store, nil, WithRecorder(rec))
	tree := newFakeTree("c1", "docs/readme.md", "docs/app.py", "src/notes.md")

	plan, err := p.BuildPlan(repo("sample"), tree)
	require.NoError(t, err)

	assert.Equal(t, "c1", plan.HeadCommit)
	assert.Empty(t, plan.Cursor)
	assert.Equal(t, []string{"docs/readme.md"}, plan.PendingFiles)
	assert.True(t, plan.HasPendingWork())
	assert.Equal(t, metrics.OutcomePending, rec.outcomes["sample"])
	assert.Zero(t, store.sets, "building a plan must not touch state")
}

func TestBuildPlan_UpToDate(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Set("sample", state.ProcessedAt("c1")))
	rec := newOutcomeRecorder()
	p := NewPlanner(store, nil, WithRecorder(rec))

	plan, err := p.BuildPlan(repo("sample"), newFakeTree("c1"))
	require.NoError(t, err)
	assert.NotNil(t, plan.PendingFiles)
	assert.False(t, plan.HasPendingWork())
	assert.Equal(t, metrics.OutcomeUpToDate, rec.outcomes["sample"])
}

func TestBuildPlan_DivergedHistory(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Set("sample", state.ProcessedAt("gone")))
	rec := newOutcomeRecorder()
	p := NewPlanner(store, nil, WithRecorder(rec))

	_, err := p.BuildPlan(repo("sample"), newFakeTree("c2"))
	require.Error(t, err)
	var diverged *changes.HistoryDivergedError
	require.ErrorAs(t, err, &diverged)
	assert.Equal(t, "gone", diverged.Cursor)
	assert.Equal(t, metrics.OutcomeDiverged, rec.outcomes["sample"])
	assert.Equal(t, "gone", store.Get("sample").Commit())
}

func TestBuildPlan_HeadErrorPropagates(t *testing.T) {
	boom := errors.New("repository operation failed")
	tree := newFakeTree("c1")
	tree.headErr = boom

	_, err := NewPlanner(newMemStore(), nil).BuildPlan(repo("sample"), tree)
	assert.Same(t, boom, err)
}

func TestBuildPlans_PreservesOrder(t *testing.T) {
	p := NewPlanner(newMemStore(), nil)
	plans, err := p.BuildPlans([]Target{
		{Repository: repo("b"), Tree: newFakeTree("b1", "docs/b.md")},
		{Repository: repo("a"), Tree: newFakeTree("a1", "docs/a.yaml")},
	})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "b", plans[0].Repository.Name)
	assert.Equal(t, "a", plans[1].Repository.Name)
}

func TestBuildPlans_FirstFailureAbortsBatch(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Set("broken", state.ProcessedAt("gone")))
	p := NewPlanner(store, nil)

	plans, err := p.BuildPlans([]Target{
		{Repository: repo("ok"), Tree: newFakeTree("o1", "docs/a.md")},
		{Repository: repo("broken"), Tree: newFakeTree("b2")},
		{Repository: repo("later"), Tree: newFakeTree("l1", "docs/c.md")},
	})
	require.Error(t, err)
	assert.Nil(t, plans)
	assert.Contains(t, err.Error(), "broken")
	var diverged *changes.HistoryDivergedError
	assert.ErrorAs(t, err, &diverged)
}

func TestMarkProcessed_RereadsHead(t *testing.T) {
	store := newMemStore()
	rec := newOutcomeRecorder()
	p := NewPlanner(store, nil, WithRecorder(rec))
	tree := newFakeTree("c1", "docs/a.md")
	tree.heads = []string{"c1", "c2"}

	plan, err := p.BuildPlan(repo("sample"), tree)
	require.NoError(t, err)
	assert.Equal(t, "c1", plan.HeadCommit)

	require.NoError(t, p.MarkProcessed(plan))
	assert.Equal(t, "c2", p.Cursor("sample"))
	assert.Equal(t, 1, rec.advances)
}

func TestMarkProcessed_StoreFailure(t *testing.T) {
	store := newMemStore()
	p := NewPlanner(store, nil)
	plan, err := p.BuildPlan(repo("sample"), newFakeTree("c1", "docs/a.md"))
	require.NoError(t, err)

	store.setErr = &state.IOError{Op: "write", Path: "x", Err: errors.New("disk full")}
	err = p.MarkProcessed(plan)
	assert.ErrorIs(t, err, state.ErrIO)
}

func TestMarkProcessed_EmptyHeadKeepsCursor(t *testing.T) {
	store := newMemStore()
	rec := newOutcomeRecorder()
	p := NewPlanner(store, nil, WithRecorder(rec))
	tree := newFakeTree("c1", "docs/a.md")
	tree.heads = []string{"c1", "c1", ""}
	plan, err := p.BuildPlan(repo("sample"), tree)
	require.NoError(t, err)
	require.NoError(t, p.MarkProcessed(plan))
	sets := store.sets

	err = p.MarkProcessed(plan)

	require.ErrorIs(t, err, ErrNoHead)
	assert.Equal(t, sets, store.sets)
	assert.Equal(t, "c1", p.Cursor("sample"))
	assert.Equal(t, 1, rec.advances)
}

func TestMarkAllProcessed_StopsAtFirstFailure(t *testing.T) {
	store := newMemStore()
	p := NewPlanner(store, nil)
	bad := newFakeTree("b1")
	plans := []*RepositoryPlan{
		{Repository: repo("one"), Tree: newFakeTree("o1")},
		{Repository: repo("two"), Tree: bad},
		{Repository: repo("three"), Tree: newFakeTree("t1")},
	}
	bad.headErr = errors.New("head unavailable")

	err := p.MarkAllProcessed(plans)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two")
	assert.Equal(t, "o1", p.Cursor("one"))
	assert.Empty(t, p.Cursor("three"))
}

func TestPlanner_EndToEndWithGitAndStateFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sample")
	repository, err := gogit.PlainInitWithOptions(root, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	c1 := commit(t, repository, root, "docs/readme.md", "# readme")

	tree, err := git.Open(root)
	require.NoError(t, err)
	store, err := state.Open(filepath.Join(t.TempDir(), "state", "repositories.json"))
	require.NoError(t, err)
	p := NewPlanner(store, changes.NewResolver())
	sample := config.Repository{Name: "sample", URL: root, Branch: "main", DocsPath: "docs"}

	plan, err := p.BuildPlan(sample, tree)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/readme.md"}, plan.PendingFiles)

	require.NoError(t, p.MarkProcessed(plan))
	assert.Equal(t, c1, store.Get("sample").Commit())

	again, err := p.BuildPlan(sample, tree)
	require.NoError(t, err)
	assert.Empty(t, again.PendingFiles)

	c2 := commit(t, repository, root, "docs/usage.yaml", "usage: true")
	plan, err = p.BuildPlan(sample, tree)
	require.NoError(t, err)
	assert.Equal(t, c2, plan.HeadCommit)
	assert.Equal(t, []string{"docs/usage.yaml"}, plan.PendingFiles)

	require.NoError(t, p.MarkProcessed(plan))
	reopened, err := state.Open(store.Path())
	require.NoError(t, err)
	assert.Equal(t, c2, reopened.Get("sample").Commit())
}

func commit(t *testing.T, repository *gogit.Repository, root, name, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	wt, err := repository.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+name, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}
