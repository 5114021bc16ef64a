// Package commands holds the CLI command implementations.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/gitsource"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// Global carries shared state to subcommands.
type Global struct {
	Logger *slog.Logger
}

// logger returns the bound logger, falling back to the process default.
func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blog.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site from the content directory"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	List    ListCmd    `cmd:"" help:"List content documents and their publication state"`
	Serve   ServeCmd   `cmd:"" help:"Serve the site locally, rebuilding on content changes"`
	Check   CheckCmd   `cmd:"" help:"Verify internal links in the generated site"`
	History HistoryCmd `cmd:"" help:"Show recent build history"`
}

// AfterApply runs after flag parsing; sets up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads and validates the configuration, then re-applies the
// logging setup so config-level log settings take effect.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !root.Verbose && (cfg.Logging.Level != "" || cfg.Logging.Format != "") {
		slog.SetDefault(slog.New(cfg.Logging.NewHandler(os.Stderr)))
	}
	return cfg, nil
}

// newAssembler builds an assembler, wiring the remote content source when one
// is configured.
func newAssembler(cfg *config.Config, drafts bool, output, workspace string) (*site.Assembler, error) {
	a, err := site.NewAssembler(cfg)
	if err != nil {
		return nil, err
	}
	a.IncludeDrafts(drafts)
	if output != "" {
		a.SetOutputDir(output)
	}
	if cfg.Content.Repository != nil {
		client := gitsource.NewClient(*cfg.Content.Repository, workspace)
		a.SetContentSync(client.Sync)
		a.SetContentDir(client.ContentDir())
	}
	return a, nil
}
