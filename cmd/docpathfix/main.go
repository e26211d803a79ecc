package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpathfix/cmd/docpathfix/commands"
	"git.home.luguber.info/inful/docpathfix/internal/foundation/errors"
	"git.home.luguber.info/inful/docpathfix/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	parser := kong.Parse(cli,
		kong.Name("docpathfix"),
		kong.Description("Rewrite malformed relative paths in generated HTML documentation."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
