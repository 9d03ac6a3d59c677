package pipeline

import (
	"git.home.luguber.info/inful/pivot/internal/changes"
	"git.home.luguber.info/inful/pivot/internal/config"
)

// RepositoryPlan is the pending work found for one repository.
type RepositoryPlan struct {
	Repository   config.Repository
	Tree         changes.Tree
	HeadCommit   string   // head observed when the plan was built
	Cursor       string   // stored cursor at plan time; empty when never processed
	PendingFiles []string // repository-relative, distinct, never nil
}

// HasPendingWork reports whether any file needs translation.
func (p *RepositoryPlan) HasPendingWork() bool {
	return len(p.PendingFiles) > 0
}

// Target pairs a repository with its synchronized tree.
type Target struct {
	Repository config.Repository
	Tree       changes.Tree
}
