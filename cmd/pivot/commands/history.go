package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pivot/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"
	"git.home.luguber.info/inful/pivot/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit  int  `short:"n" default:"10" help:"Number of runs (or events with --events) to show"`
	Events bool `help:"List raw ledger events instead of run summaries"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if !cfg.History.IsEnabled() {
		return ferrors.ConfigError("run history is disabled (history.enabled: false)").Build()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	store, err := eventstore.NewSQLiteStore(cfg.HistoryFile())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.Events {
		return h.printEvents(ctx, g, store)
	}
	return h.printRuns(ctx, g, store)
}

func (h *HistoryCmd) printRuns(ctx context.Context, g *Global, store eventstore.Store) error {
	projection := eventstore.NewRunHistoryProjection(store, h.Limit)
	if err := projection.Rebuild(ctx); err != nil {
		return err
	}
	runs := projection.History()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tRUN\tMODE\tSTATUS\tPLANNED\tPENDING\tADVANCED\tFAILED")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.StartedAt.Local().Format(time.DateTime), shortID(r.RunID), r.Mode, r.Status,
			r.Planned, r.PendingFiles, len(r.Advanced), len(r.Failed))
	}
	return tw.Flush()
}

func (h *HistoryCmd) printEvents(ctx context.Context, g *Global, store eventstore.Store) error {
	events, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No events recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tRUN\tTYPE\tREPOSITORY\tPAYLOAD")
	for _, e := range events {
		repo := e.Repository()
		if repo == "" {
			repo = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp().Local().Format(time.DateTime), shortID(e.RunID()), e.Type(), repo, e.Payload())
	}
	return tw.Flush()
}

func shortID(id string) string { return logfields.ShortCommit(id) }
