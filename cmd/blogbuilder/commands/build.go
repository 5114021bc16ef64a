package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/notify"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output    string `short:"o" help:"Output directory for the generated site (overrides config)"`
	Drafts    bool   `short:"D" help:"Include draft documents under drafts/"`
	Report    string `help:"Write a JSON build report to this path"`
	Workspace string `help:"Workspace directory for remote content checkouts" default:".blogbuilder"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	log := g.logger()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assembler, err := newAssembler(cfg, b.Drafts, b.Output, b.Workspace)
	if err != nil {
		return err
	}

	report, err := assembler.Build(ctx)
	if report != nil && b.Report != "" {
		if perr := report.Persist(b.Report); perr != nil {
			log.Warn("failed to persist build report", logfields.Error(perr))
		}
	}
	if err != nil {
		return err
	}

	if cfg.Notifications != nil && cfg.Notifications.NATS != nil {
		publisher, nerr := notify.NewPublisher(cfg.Notifications.NATS)
		if nerr != nil {
			log.Warn("notifications unavailable", logfields.Error(nerr))
		} else {
			defer publisher.Close()
			if nerr := publisher.Publish(report.Summary()); nerr != nil {
				log.Warn("failed to publish build summary", logfields.Error(nerr))
			}
		}
	}

	fmt.Println(summaryLine(report))
	return nil
}

// summaryLine formats the one-line console summary, including the count of
// documents that were skipped with a warning.
func summaryLine(report *site.BuildReport) string {
	return fmt.Sprintf("Site built: %d posts, %d pages, %d files rendered, %d skipped (%s)",
		report.Posts, report.Pages, report.RenderedPages, report.SkippedDocuments, report.Outcome)
}
