package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"git.home.luguber.info/inful/pivot/internal/config"
	ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"
	"git.home.luguber.info/inful/pivot/internal/logfields"
	"git.home.luguber.info/inful/pivot/internal/metrics"
	"git.home.luguber.info/inful/pivot/internal/pipeline"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Execute    bool     `help:"Hand off pending files and record the processed commits (default is a dry run)"`
	Repository []string `short:"r" help:"Only process the named repositories"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	repos, err := selectRepositories(cfg, r.Repository)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, g.Logger, metrics.NoopRecorder{}, r.Execute)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil {
			g.Logger.Warn("Failed to close run resources", logfields.Error(cerr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := pipeline.ModeDryRun
	if r.Execute {
		mode = pipeline.ModeExecute
	}
	report, err := rt.pipeline.Run(ctx, repos, mode)
	if report != nil {
		printReport(g.Out, report)
	}
	return err
}

// selectRepositories keeps configuration order; unknown names are rejected.
func selectRepositories(cfg *config.Config, names []string) ([]config.Repository, error) {
	if len(names) == 0 {
		return cfg.Repositories, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := cfg.Repository(n); !ok {
			return nil, ferrors.ValidationError(fmt.Sprintf("unknown repository %q", n)).
				WithContext("repository", n).
				Build()
		}
		want[n] = true
	}
	out := make([]config.Repository, 0, len(names))
	for _, repo := range cfg.Repositories {
		if want[repo.Name] {
			out = append(out, repo)
		}
	}
	return out, nil
}

func printReport(out io.Writer, report *pipeline.Report) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REPOSITORY\tCURSOR\tHEAD\tOUTCOME\tFILES")
	for _, repo := range report.Repositories {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			repo.Name, logfields.ShortCommit(repo.Cursor), logfields.ShortCommit(repo.HeadCommit), repo.Outcome, len(repo.PendingFiles))
	}
	_ = tw.Flush()

	for _, repo := range report.Repositories {
		if len(repo.PendingFiles) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s:\n", repo.Name)
		for _, f := range repo.PendingFiles {
			_, _ = fmt.Fprintf(out, "  %s\n", f)
		}
	}

	switch {
	case report.Failed():
		_, _ = fmt.Fprintf(out, "\nRun %s failed.\n", report.RunID)
	case report.Mode == pipeline.ModeDryRun:
		_, _ = fmt.Fprintf(out, "\nDry run: %d pending files. Re-run with --execute to hand them off.\n", report.PendingCount())
	default:
		_, _ = fmt.Fprintf(out, "\nRun %s handed off %d files.\n", report.RunID, report.PendingCount())
	}
}
