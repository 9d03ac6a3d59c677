package git

import (
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isAncestor reports whether a is reachable from b by following parents.
// A missing b is an error; parents cut off by a shallow clone are skipped.
func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			if h != b && errors.Is(err, plumbing.ErrObjectNotFound) {
				continue
			}
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}
