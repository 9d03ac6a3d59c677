package commands

import (
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/pivot/internal/changes"
	"git.home.luguber.info/inful/pivot/internal/config"
	"git.home.luguber.info/inful/pivot/internal/eventstore"
	"git.home.luguber.info/inful/pivot/internal/git"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/notify"
	"git.home.luguber.info/inful/pivot/internal/pipeline"
	"git.home.luguber.info/inful/pivot/internal/state"
)

// runtime holds the collaborators of one pipeline run.
type runtime struct {
	store     *state.Store
	planner   *pipeline.Planner
	pipeline  *pipeline.Pipeline
	events    eventstore.Store
	publisher notify.Publisher
}

// newRuntime opens the state file, the run ledger and, when handoff is set,
// the plan publisher.
func newRuntime(cfg *config.Config, logger *slog.Logger, recorder metrics.Recorder, handoff bool) (*runtime, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	store, err := state.Open(cfg.StateFile(), state.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	rt := &runtime{store: store}

	resolver := changes.NewResolver(
		changes.WithSuffixes(changes.NewSuffixes(cfg.Tracking.Suffixes...)),
		changes.WithLogger(logger),
	)
	rt.planner = pipeline.NewPlanner(store, resolver,
		pipeline.WithRecorder(recorder),
		pipeline.WithPlannerLogger(logger))

	client := git.NewClient(cfg.RepositoriesDir(), git.WithSyncConfig(cfg.Sync), git.WithLogger(logger))
	if err := client.EnsureWorkspace(); err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithMetrics(recorder), pipeline.WithLogger(logger)}
	if cfg.History.IsEnabled() {
		events, err := eventstore.NewSQLiteStore(cfg.HistoryFile())
		if err != nil {
			return nil, err
		}
		rt.events = events
		opts = append(opts, pipeline.WithEvents(events))
	}
	if handoff {
		pub, err := notify.New(cfg.Notify, logger)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.publisher = pub
		opts = append(opts, pipeline.WithHandoff(pub))
	}

	rt.pipeline = pipeline.New(cfg, pipeline.GitSyncer(client), rt.planner, opts...)
	return rt, nil
}

// Close releases the ledger and the publisher.
func (rt *runtime) Close() error {
	var errs []error
	if rt.publisher != nil {
		errs = append(errs, rt.publisher.Close())
	}
	if rt.events != nil {
		errs = append(errs, rt.events.Close())
	}
	return errors.Join(errs...)
}
