package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pivot/cmd/pivot/commands"
	ferrors "git.home.luguber.info/inful/pivot/internal/foundation/errors"
	"git.home.luguber.info/inful/pivot/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("pivot"),
		kong.Description("Track documentation changes in git repositories and hand them off for translation."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := commands.NewGlobal(slog.Default())
	err := parser.Run(global, cli)
	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(commands.Classify(err))
}
