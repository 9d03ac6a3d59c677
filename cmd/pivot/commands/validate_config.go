package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"git.home.luguber.info/inful/pivot/internal/config"
)

// ValidateConfigCmd implements the 'validate-config' command.
type ValidateConfigCmd struct{}

func (v *ValidateConfigCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, "Configuration loaded successfully.")
	printConfigSummary(g.Out, cfg)
	return nil
}

func printConfigSummary(out io.Writer, cfg *config.Config) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tURL\tBRANCH\tDOCS PATH")
	for _, r := range cfg.Repositories {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.URL, r.Branch, r.DocsRoot())
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(out, "State directory: %s\n", cfg.WorkDir)
	_, _ = fmt.Fprintf(out, "Output directory: %s\n", cfg.OutputDir)
}
