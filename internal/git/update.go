package git

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

func (c *Client) updateExistingRepo(ctx context.Context, repoPath string, repo config.Repository) (*Worktree, error) {
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}

	if err := c.fetchOrigin(ctx, repository, repo); err != nil {
		return nil, classifyTransportError("fetch", repo.URL, err)
	}

	localRef, remoteRef, err := checkoutAndGetRefs(repository, wt, repo.Branch)
	if err != nil {
		return nil, err
	}
	if err := c.fastForward(repository, wt, repo, localRef, remoteRef); err != nil {
		return nil, err
	}
	return newWorktree(repoPath, repository), nil
}

// fetchOrigin fetches the tracked branch into its remote-tracking ref.
func (c *Client) fetchOrigin(ctx context.Context, repository *git.Repository, repo config.Repository) error {
	refSpec := ggitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", repo.Branch, repo.Branch))
	opts := &git.FetchOptions{RemoteName: "origin", Tags: git.NoTags, RefSpecs: []ggitcfg.RefSpec{refSpec}}
	if c.shallowDepth > 0 {
		opts.Depth = c.shallowDepth
	}
	auth, err := getAuthentication(repo.Auth)
	if err != nil {
		return err
	}
	opts.Auth = auth
	if err := repository.FetchContext(ctx, opts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch: %w", err)
	}
	return nil
}

// checkoutAndGetRefs ensures the local branch exists and is checked out.
func checkoutAndGetRefs(repository *git.Repository, wt *git.Worktree, branch string) (localRef, remoteRef *plumbing.Reference, err error) {
	localBranchRef := plumbing.NewBranchReferenceName(branch)
	remoteRef, err = repository.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return nil, nil, &NotFoundError{Op: "update", URL: "origin/" + branch, Err: fmt.Errorf("remote ref: %w", err)}
	}
	localRef, lerr := repository.Reference(localBranchRef, true)
	if lerr != nil {
		if err = wt.Checkout(&git.CheckoutOptions{Branch: localBranchRef, Hash: remoteRef.Hash(), Create: true, Force: true}); err != nil {
			return nil, nil, fmt.Errorf("checkout new branch: %w", err)
		}
		localRef, err = repository.Reference(localBranchRef, true)
		if err != nil {
			return nil, nil, fmt.Errorf("local ref: %w", err)
		}
		return localRef, remoteRef, nil
	}
	if err = wt.Checkout(&git.CheckoutOptions{Branch: localBranchRef, Force: true}); err != nil {
		return nil, nil, fmt.Errorf("checkout existing branch: %w", err)
	}
	return localRef, remoteRef, nil
}

// fastForward moves the local branch to the remote head when the local head is its ancestor.
func (c *Client) fastForward(repository *git.Repository, wt *git.Worktree, repo config.Repository, localRef, remoteRef *plumbing.Reference) error {
	from, to := localRef.Hash(), remoteRef.Hash()
	if from == to {
		c.logger.Info("Repository already up to date", logfields.Repository(repo.Name), logfields.Branch(repo.Branch), logfields.Commit(to.String()))
		return nil
	}
	ok, err := isAncestor(repository, from, to)
	if err != nil {
		return fmt.Errorf("ancestor check: %w", err)
	}
	if !ok {
		return &RemoteDivergedError{
			Op:     "update",
			URL:    repo.URL,
			Branch: repo.Branch,
			Err:    fmt.Errorf("local %s is not an ancestor of remote %s", from.String()[:8], to.String()[:8]),
		}
	}
	if err := wt.Reset(&git.ResetOptions{Commit: to, Mode: git.HardReset}); err != nil {
		return fmt.Errorf("fast-forward reset: %w", err)
	}
	c.logger.Info("Fast-forwarded repository",
		logfields.Repository(repo.Name),
		logfields.Branch(repo.Branch),
		logfields.Cursor(from.String()),
		logfields.Commit(to.String()))
	return nil
}
