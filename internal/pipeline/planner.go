package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pivot/internal/changes"
	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/logfields"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/state"
)

// ErrNoHead is returned when a tree reports an empty head commit. Recording it
// would erase the cursor.
var ErrNoHead = errors.New("repository has no head commit")

// CursorStore is the part of state.Store the planner needs.
type CursorStore interface {
	Get(name string) state.RepositoryState
	Set(name string, st state.RepositoryState) error
}

// Planner composes the cursor store and the resolver into repository plans.
type Planner struct {
	store    CursorStore
	resolver *changes.Resolver
	recorder metrics.Recorder
	logger   *slog.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) PlannerOption {
	return func(p *Planner) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithPlannerLogger sets the planner logger.
func WithPlannerLogger(l *slog.Logger) PlannerOption {
	return func(p *Planner) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPlanner creates a Planner. A nil resolver uses the default suffixes.
func NewPlanner(store CursorStore, resolver *changes.Resolver, opts ...PlannerOption) *Planner {
	if resolver == nil {
		resolver = changes.NewResolver()
	}
	p := &Planner{store: store, resolver: resolver, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cursor returns the stored cursor for name; empty when never processed.
func (p *Planner) Cursor(name string) string {
	return p.store.Get(name).Commit()
}

// BuildPlan reads the current head from tree and the stored cursor, then
// resolves the pending files. It never mutates state.
func (p *Planner) BuildPlan(repo config.Repository, tree changes.Tree) (*RepositoryPlan, error) {
	start := time.Now()
	defer func() { p.recorder.ObservePlanDuration(repo.Name, time.Since(start)) }()

	head, err := tree.Head()
	if err != nil {
		p.recorder.IncPlanOutcome(repo.Name, metrics.OutcomeFailed)
		return nil, err
	}
	cursor := p.Cursor(repo.Name)

	pending, err := p.resolver.Resolve(repo, tree, head, cursor)
	if err != nil {
		outcome := metrics.OutcomeFailed
		var diverged *changes.HistoryDivergedError
		if errors.As(err, &diverged) {
			outcome = metrics.OutcomeDiverged
		}
		p.recorder.IncPlanOutcome(repo.Name, outcome)
		return nil, err
	}

	plan := &RepositoryPlan{Repository: repo, Tree: tree, HeadCommit: head, Cursor: cursor, PendingFiles: pending}
	p.recorder.SetPendingFiles(repo.Name, len(pending))
	if plan.HasPendingWork() {
		p.recorder.IncPlanOutcome(repo.Name, metrics.OutcomePending)
	} else {
		p.recorder.IncPlanOutcome(repo.Name, metrics.OutcomeUpToDate)
	}
	p.logger.Debug("Plan built",
		logfields.Repository(repo.Name),
		logfields.Cursor(cursor),
		logfields.Commit(head),
		logfields.Count(len(pending)))
	return plan, nil
}

// BuildPlans builds plans in input order. The first failure aborts the batch.
func (p *Planner) BuildPlans(targets []Target) ([]*RepositoryPlan, error) {
	plans := make([]*RepositoryPlan, 0, len(targets))
	for _, t := range targets {
		plan, err := p.BuildPlan(t.Repository, t.Tree)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", t.Repository.Name, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// MarkProcessed records the tree's head as of now (not as of plan time) as the
// repository cursor.
func (p *Planner) MarkProcessed(plan *RepositoryPlan) error {
	head, err := plan.Tree.Head()
	if err != nil {
		return err
	}
	if head == "" {
		return ErrNoHead
	}
	if err := p.store.Set(plan.Repository.Name, state.ProcessedAt(head)); err != nil {
		return err
	}
	p.recorder.IncCursorAdvance(plan.Repository.Name)
	p.logger.Info("Cursor advanced",
		logfields.Repository(plan.Repository.Name),
		logfields.Cursor(plan.Cursor),
		logfields.Commit(head))
	return nil
}

// MarkAllProcessed marks plans in order, stopping at the first failure.
func (p *Planner) MarkAllProcessed(plans []*RepositoryPlan) error {
	for _, plan := range plans {
		if err := p.MarkProcessed(plan); err != nil {
			return fmt.Errorf("mark %s processed: %w", plan.Repository.Name, err)
		}
	}
	return nil
}
