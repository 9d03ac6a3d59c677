package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/retry"
)

// remoteFixture is a bare "remote" plus a seed checkout used to push commits to it.
type remoteFixture struct {
	barePath string
	seedPath string
	seed     *git.Repository
}

func initRepo(t *testing.T, path string, bare bool) *git.Repository {
	t.Helper()
	repo, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
		Bare:        bare,
	})
	require.NoError(t, err)
	return repo
}

func newRemoteFixture(t *testing.T) *remoteFixture {
	t.Helper()
	tmp := t.TempDir()
	f := &remoteFixture{
		barePath: filepath.Join(tmp, "remote.git"),
		seedPath: filepath.Join(tmp, "seed"),
	}
	initRepo(t, f.barePath, true)
	f.seed = initRepo(t, f.seedPath, false)
	_, err := f.seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{f.barePath}})
	require.NoError(t, err)
	return f
}

func (f *remoteFixture) commit(t *testing.T, files map[string]string, msg string) string {
	t.Helper()
	return commitFiles(t, f.seed, f.seedPath, files, msg)
}

func (f *remoteFixture) push(t *testing.T) {
	t.Helper()
	require.NoError(t, f.seed.Push(&git.PushOptions{RemoteName: "origin"}))
}

func commitFiles(t *testing.T, repo *git.Repository, root string, files map[string]string, msg string) string {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	return commitAll(t, wt, msg)
}

func commitAll(t *testing.T, wt *git.Worktree, msg string) string {
	t.Helper()
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func (f *remoteFixture) repository(name string) config.Repository {
	return config.Repository{Name: name, URL: f.barePath, Branch: "main", DocsPath: "docs"}
}

func noRetryClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(filepath.Join(t.TempDir(), "workspace"), WithRetryPolicy(retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 0)))
}
