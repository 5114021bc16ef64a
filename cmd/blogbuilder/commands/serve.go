package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/blogbuilder/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr      string `help:"Listen address (overrides config)"`
	Drafts    bool   `short:"D" help:"Include draft documents under drafts/"`
	Workspace string `help:"Workspace directory for remote content checkouts" default:".blogbuilder"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Serve.Addr = s.Addr
	}

	assembler, err := newAssembler(cfg, s.Drafts, "", s.Workspace)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, assembler)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
