package commands

import (
	"bufio"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pivot/internal/state"
)

// ResetCmd implements the 'reset' command.
type ResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation"`
}

func (r *ResetCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	store, err := state.Open(cfg.StateFile(), state.WithLogger(g.Logger))
	if err != nil {
		return err
	}

	if !r.Yes {
		_, _ = fmt.Fprintf(g.Out, "Forget processed commits for %d repositories in %s? [y/N] ", len(store.Names()), store.Path())
		line, _ := bufio.NewReader(g.In).ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			_, _ = fmt.Fprintln(g.Out, "Aborted.")
			return nil
		}
	}

	if err := store.Clear(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, "State cleared; the next run processes every tracked file.")
	return nil
}
