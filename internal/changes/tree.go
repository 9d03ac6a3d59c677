package changes

import "errors"

// ErrUnknownCommit is wrapped by Tree implementations when a commit is missing
// or is not part of the history being compared.
var ErrUnknownCommit = errors.New("unknown commit")

// Tree is the read-only view of a synchronized working tree.
type Tree interface {
	// Head returns the commit id currently checked out.
	Head() (string, error)
	// DiffNames lists repository-relative paths that differ between from and to,
	// including added, modified, deleted and both sides of renamed files.
	DiffNames(from, to string) ([]string, error)
	// ListTracked lists every tracked path at head.
	ListTracked() ([]string, error)
}
