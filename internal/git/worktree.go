package git

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/pivot/internal/changes"
)

// Worktree is a synchronized checkout. It implements changes.Tree.
type Worktree struct {
	path string
	repo *git.Repository
}

var _ changes.Tree = (*Worktree)(nil)

func newWorktree(path string, repo *git.Repository) *Worktree {
	return &Worktree{path: path, repo: repo}
}

// Open wraps an existing checkout without synchronizing it.
func Open(path string) (*Worktree, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return newWorktree(path, repo), nil
}

// Path returns the checkout directory.
func (w *Worktree) Path() string { return w.path }

// Head returns the commit currently checked out. It is read from disk on every call.
func (w *Worktree) Head() (string, error) {
	ref, err := w.repo.Head()
	if err != nil {
		return "", fmt.Errorf("read HEAD of %s: %w", w.path, err)
	}
	return ref.Hash().String(), nil
}

// DiffNames lists the paths that differ between from and to, sorted. A rename
// contributes both its old and its new path.
func (w *Worktree) DiffNames(from, to string) ([]string, error) {
	toCommit, err := w.commit(to)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", to, err)
	}
	fromCommit, err := w.commit(from)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) || errors.Is(err, errInvalidHash) {
			return nil, fmt.Errorf("commit %s: %w", from, changes.ErrUnknownCommit)
		}
		return nil, fmt.Errorf("resolve %s: %w", from, err)
	}
	ok, err := isAncestor(w.repo, fromCommit.Hash, toCommit.Hash)
	if err != nil {
		return nil, fmt.Errorf("ancestor check: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("commit %s is not an ancestor of %s: %w", from, to, changes.ErrUnknownCommit)
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", from, err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", to, err)
	}
	diff, err := object.DiffTreeWithOptions(context.Background(), fromTree, toTree, &object.DiffTreeOptions{DetectRenames: true})
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", from, to, err)
	}

	seen := make(map[string]struct{}, len(diff)*2)
	names := make([]string, 0, len(diff)*2)
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, ch := range diff {
		add(ch.From.Name)
		add(ch.To.Name)
	}
	sort.Strings(names)
	return names, nil
}

// ListTracked lists every file in the HEAD tree, sorted.
func (w *Worktree) ListTracked() ([]string, error) {
	head, err := w.Head()
	if err != nil {
		return nil, err
	}
	commit, err := w.commit(head)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", head, err)
	}
	var names []string
	err = tree.Files().ForEach(func(f *object.File) error {
		names = append(names, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tree of %s: %w", head, err)
	}
	sort.Strings(names)
	return names, nil
}

var errInvalidHash = errors.New("invalid commit hash")

func (w *Worktree) commit(id string) (*object.Commit, error) {
	if !plumbing.IsHash(id) {
		return nil, fmt.Errorf("%q: %w", id, errInvalidHash)
	}
	return w.repo.CommitObject(plumbing.NewHash(id))
}
