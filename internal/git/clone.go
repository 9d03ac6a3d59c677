package git

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

func (c *Client) cloneOnce(ctx context.Context, repo config.Repository) (*Worktree, error) {
	repoPath := c.RepositoryPath(repo.Name)
	c.logger.Debug("Cloning repository", logfields.URL(repo.URL), logfields.Repository(repo.Name), logfields.Branch(repo.Branch), logfields.Path(repoPath))
	if err := os.RemoveAll(repoPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:           repo.URL,
		ReferenceName: plumbing.NewBranchReferenceName(repo.Branch),
		SingleBranch:  true,
		Tags:          git.NoTags,
	}
	if c.shallowDepth > 0 {
		opts.Depth = c.shallowDepth
	}
	auth, err := getAuthentication(repo.Auth)
	if err != nil {
		return nil, err
	}
	opts.Auth = auth

	repository, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		_ = os.RemoveAll(repoPath)
		return nil, classifyTransportError("clone", repo.URL, err)
	}
	wt := newWorktree(repoPath, repository)
	head, _ := wt.Head()
	c.logger.Info("Repository cloned", logfields.Repository(repo.Name), logfields.URL(repo.URL), logfields.Commit(head), logfields.Path(repoPath))
	return wt, nil
}
