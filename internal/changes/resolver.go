package changes

import (
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

// Resolver computes the pending documentation files of a repository.
type Resolver struct {
	suffixes Suffixes
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSuffixes replaces the tracked suffix set.
func WithSuffixes(s Suffixes) Option {
	return func(r *Resolver) { r.suffixes = s }
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver returns a Resolver tracking DefaultSuffixes unless configured otherwise.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{suffixes: DefaultSuffixes, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Suffixes returns the tracked suffix set.
func (r *Resolver) Suffixes() Suffixes { return r.suffixes }

// Resolve returns the tracked paths under repo's docs root that changed between
// cursor and head. An empty cursor means the repository was never processed and
// every tracked path is a candidate. The result is never nil.
func (r *Resolver) Resolve(repo config.Repository, tree Tree, head, cursor string) ([]string, error) {
	if cursor != "" && cursor == head {
		r.logger.Debug("Repository up to date", logfields.Repository(repo.Name), logfields.Commit(head))
		return []string{}, nil
	}

	var candidates []string
	var err error
	if cursor == "" {
		candidates, err = tree.ListTracked()
		if err != nil {
			return nil, err
		}
	} else {
		candidates, err = tree.DiffNames(cursor, head)
		if err != nil {
			if errors.Is(err, ErrUnknownCommit) {
				return nil, &HistoryDivergedError{Repository: repo.Name, Cursor: cursor, Head: head, Err: err}
			}
			return nil, err
		}
	}

	pending := Dedupe(Filter(candidates, r.suffixes, repo.DocsRoot()))
	r.logger.Debug("Resolved pending files",
		logfields.Repository(repo.Name),
		logfields.Cursor(cursor),
		logfields.Commit(head),
		logfields.Count(len(pending)))
	return pending, nil
}
