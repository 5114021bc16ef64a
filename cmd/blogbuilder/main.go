package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/cmd/blogbuilder/commands"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("blogbuilder"),
		kong.Description("Static blog generator: markdown content in, HTML site and JSON feed out."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("blogbuilder %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)
	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	ctx.FatalIfErrorf(err)
}
