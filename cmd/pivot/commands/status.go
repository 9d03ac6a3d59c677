package commands

import (
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/pivot/internal/state"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (s *StatusCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	store, err := state.Open(cfg.StateFile(), state.WithLogger(g.Logger))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "REPOSITORY\tLAST PROCESSED COMMIT")
	configured := make(map[string]bool, len(cfg.Repositories))
	for _, repo := range cfg.Repositories {
		configured[repo.Name] = true
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", repo.Name, describeCursor(store.Get(repo.Name)))
	}
	for _, name := range store.Names() {
		if !configured[name] {
			_, _ = fmt.Fprintf(tw, "%s\t%s (not configured)\n", name, describeCursor(store.Get(name)))
		}
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(g.Out, "State file: %s\n", store.Path())
	return nil
}

func describeCursor(st state.RepositoryState) string {
	if !st.Processed() {
		return "never processed"
	}
	return st.Commit()
}
