package git

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/foundation/errors"
	"git.home.luguber.info/inful/pivot/internal/logfields"
	"git.home.luguber.info/inful/pivot/internal/retry"
)

// Client handles Git operations inside a workspace directory.
type Client struct {
	workspaceDir string
	shallowDepth int
	policy       retry.Policy
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithSyncConfig applies retry and shallow clone settings.
func WithSyncConfig(s config.SyncConfig) Option {
	return func(c *Client) {
		c.policy = retry.FromSyncConfig(s)
		c.shallowDepth = s.ShallowDepth
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithLogger sets the logger used for sync diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Git client that keeps checkouts under workspaceDir.
func NewClient(workspaceDir string, opts ...Option) *Client {
	c := &Client{workspaceDir: workspaceDir, policy: retry.DefaultPolicy(), logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RepositoryPath returns the checkout location for a repository name.
func (c *Client) RepositoryPath(name string) string {
	return filepath.Join(c.workspaceDir, name)
}

// EnsureWorkspace creates the workspace directory.
func (c *Client) EnsureWorkspace() error {
	if err := os.MkdirAll(c.workspaceDir, 0o750); err != nil {
		return errors.FileSystemError("failed to create workspace directory").
			WithCause(err).
			WithContext("path", c.workspaceDir).
			Build()
	}
	return nil
}

// Sync clones repo on first use and fast-forwards it afterwards, returning the
// resulting working tree. Transient failures are retried per the client policy.
func (c *Client) Sync(ctx context.Context, repo config.Repository) (*Worktree, error) {
	if err := c.EnsureWorkspace(); err != nil {
		return nil, err
	}
	start := time.Now()
	var wt *Worktree
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		wt, err = c.syncOnce(ctx, repo)
		return err
	}, func(err error) bool { return !isPermanentGitError(err) }, func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("Retrying git sync",
			logfields.Repository(repo.Name),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			logfields.Error(err))
	})
	if err != nil {
		c.logger.Error("Repository sync failed", logfields.Repository(repo.Name), logfields.URL(repo.URL), logfields.Error(err))
		return nil, ClassifyGitError(err, "sync", repo.URL)
	}
	c.logger.Debug("Repository synced", logfields.Repository(repo.Name), logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return wt, nil
}

func (c *Client) syncOnce(ctx context.Context, repo config.Repository) (*Worktree, error) {
	repoPath := c.RepositoryPath(repo.Name)
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil {
		c.logger.Debug("Repository missing, cloning", logfields.Repository(repo.Name))
		return c.cloneOnce(ctx, repo)
	}
	return c.updateExistingRepo(ctx, repoPath, repo)
}
