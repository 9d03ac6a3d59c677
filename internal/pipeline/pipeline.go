package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pivot/internal/changes"
	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/eventstore"
	"git.home.luguber.info/inful/pivot/internal/git"
	"git.home.luguber.info/inful/pivot/internal/logfields"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/notify"
)

const (
	stageSync    = "sync"
	stagePlan    = "plan"
	stageHandoff = "handoff"
	stageMark    = "mark_processed"
)

// Syncer brings a repository's working tree up to date.
type Syncer interface {
	Sync(ctx context.Context, repo config.Repository) (changes.Tree, error)
}

// SyncerFunc adapts a function to Syncer.
type SyncerFunc func(ctx context.Context, repo config.Repository) (changes.Tree, error)

// Sync calls f.
func (f SyncerFunc) Sync(ctx context.Context, repo config.Repository) (changes.Tree, error) {
	return f(ctx, repo)
}

// GitSyncer adapts a git client to Syncer.
func GitSyncer(client *git.Client) Syncer {
	return SyncerFunc(func(ctx context.Context, repo config.Repository) (changes.Tree, error) {
		wt, err := client.Sync(ctx, repo)
		if err != nil {
			return nil, err
		}
		return wt, nil
	})
}

// Handoff receives plans with pending work in execute mode.
type Handoff interface {
	Publish(ctx context.Context, msg notify.PlanReady) error
	Target() string
}

// Pipeline drives a run over the configured repositories.
type Pipeline struct {
	cfg      *config.Config
	syncer   Syncer
	planner  *Planner
	handoff  Handoff
	events   eventstore.Recorder
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHandoff sets where plans are delivered in execute mode.
func WithHandoff(h Handoff) Option {
	return func(p *Pipeline) {
		if h != nil {
			p.handoff = h
		}
	}
}

// WithEvents sets the run ledger.
func WithEvents(r eventstore.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.events = r
		}
	}
}

// WithMetrics sets the recorder used for sync timings.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Pipeline. Without WithHandoff plans are only logged.
func New(cfg *config.Config, syncer Syncer, planner *Planner, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		syncer:   syncer,
		planner:  planner,
		events:   eventstore.Nop{},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.handoff == nil {
		p.handoff = notify.NewLogPublisher(p.logger)
	}
	return p
}

// Collect syncs every repository and builds its plan. The first failure aborts.
func (p *Pipeline) Collect(ctx context.Context, repos []config.Repository) ([]*RepositoryPlan, error) {
	plans, _, err := p.collect(ctx, uuid.NewString(), repos)
	return plans, err
}

func (p *Pipeline) collect(ctx context.Context, runID string, repos []config.Repository) ([]*RepositoryPlan, *RepositoryReport, error) {
	ledger := p.ledger(ctx)
	plans := make([]*RepositoryPlan, 0, len(repos))
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		logger := p.logger.With(logfields.RunID(runID), logfields.Repository(repo.Name))

		start := p.now()
		tree, err := p.syncer.Sync(ctx, repo)
		p.recorder.ObserveSyncDuration(repo.Name, p.now().Sub(start), err == nil)
		if err != nil {
			logger.Error("Repository sync failed", logfields.Error(err))
			ledger.add(eventstore.NewPlanFailed(runID, repo.Name, stageSync, err.Error()))
			return nil, &RepositoryReport{Name: repo.Name, Outcome: OutcomeFailed, Err: err}, fmt.Errorf("sync %s: %w", repo.Name, err)
		}

		plan, err := p.planner.BuildPlan(repo, tree)
		if err != nil {
			logger.Error("Plan failed", logfields.Error(err))
			ledger.add(eventstore.NewPlanFailed(runID, repo.Name, stagePlan, err.Error()))
			return nil, &RepositoryReport{Name: repo.Name, Outcome: OutcomeFailed, Err: err}, fmt.Errorf("plan %s: %w", repo.Name, err)
		}
		ledger.add(eventstore.NewPlanBuilt(runID, repo.Name, plan.HeadCommit, plan.Cursor, plan.PendingFiles))
		plans = append(plans, plan)
	}
	return plans, nil, nil
}

// Run collects plans and, in execute mode, hands off pending work and advances
// cursors. A dry run never mutates state. The report is returned even on error.
func (p *Pipeline) Run(ctx context.Context, repos []config.Repository, mode Mode) (*Report, error) {
	runID := uuid.NewString()
	report := &Report{RunID: runID, Mode: mode, StartedAt: p.now()}
	logger := p.logger.With(logfields.RunID(runID))
	ledger := p.ledger(ctx)

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	ledger.add(eventstore.NewRunStarted(runID, string(mode), names))
	logger.Info("Run started", slog.String("mode", string(mode)), logfields.Count(len(repos)))

	finish := func(err error) (*Report, error) {
		report.Duration = p.now().Sub(report.StartedAt)
		status := "completed"
		if err != nil {
			status = "failed"
			logger.Error("Run failed", logfields.Error(err))
		} else {
			logger.Info("Run completed",
				logfields.Count(report.PendingCount()),
				logfields.DurationMS(float64(report.Duration.Milliseconds())))
		}
		// ctx may already be cancelled; the ledger entry still belongs to this run.
		p.ledger(context.WithoutCancel(ctx)).add(eventstore.NewRunCompleted(runID, status, report.Duration))
		return report, err
	}

	plans, failed, err := p.collect(ctx, runID, repos)
	if err != nil {
		if failed != nil {
			report.add(*failed)
		}
		return finish(err)
	}
	for _, plan := range plans {
		report.add(reportFor(plan))
	}
	if mode != ModeExecute {
		return finish(nil)
	}

	for i, plan := range plans {
		rr := &report.Repositories[i]
		if err := p.execute(ctx, runID, plan, rr); err != nil {
			rr.Outcome = OutcomeFailed
			rr.Err = err
			return finish(fmt.Errorf("%s: %w", plan.Repository.Name, err))
		}
	}
	return finish(nil)
}

func (p *Pipeline) execute(ctx context.Context, runID string, plan *RepositoryPlan, rr *RepositoryReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := plan.Repository.Name
	ledger := p.ledger(ctx)

	if plan.HasPendingWork() {
		msg := p.message(runID, plan)
		if err := p.handoff.Publish(ctx, msg); err != nil {
			ledger.add(eventstore.NewPlanFailed(runID, name, stageHandoff, err.Error()))
			return err
		}
		rr.Outcome = OutcomeHandedOff
		ledger.add(eventstore.NewHandoffPublished(runID, name, plan.HeadCommit, len(plan.PendingFiles), p.handoff.Target()))
	}

	if err := p.planner.MarkProcessed(plan); err != nil {
		ledger.add(eventstore.NewPlanFailed(runID, name, stageMark, err.Error()))
		return err
	}
	rr.Advanced = true
	ledger.add(eventstore.NewCursorAdvanced(runID, name, plan.Cursor, p.planner.Cursor(name)))
	return nil
}

func (p *Pipeline) message(runID string, plan *RepositoryPlan) notify.PlanReady {
	msg := notify.PlanReady{
		RunID:        runID,
		Repository:   plan.Repository.Name,
		URL:          plan.Repository.URL,
		Branch:       plan.Repository.Branch,
		HeadCommit:   plan.HeadCommit,
		DocsPath:     plan.Repository.DocsRoot(),
		PendingFiles: plan.PendingFiles,
		CreatedAt:    p.now().UTC(),
	}
	if p.cfg != nil {
		msg.OutputDir = p.cfg.OutputDir
	}
	if pt, ok := plan.Tree.(interface{ Path() string }); ok {
		msg.WorkTree = pt.Path()
	}
	return msg
}

// runLedger appends run events; ledger failures are logged and never fail the run.
type runLedger struct {
	ctx    context.Context
	events eventstore.Recorder
	logger *slog.Logger
}

func (p *Pipeline) ledger(ctx context.Context) runLedger {
	return runLedger{ctx: ctx, events: p.events, logger: p.logger}
}

func (l runLedger) add(e *eventstore.BaseEvent, err error) {
	if err == nil {
		err = l.events.Append(l.ctx, e)
	}
	if err != nil {
		l.logger.Warn("Failed to record run event", logfields.Error(err))
	}
}
