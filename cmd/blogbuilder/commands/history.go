package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/buildlog"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" help:"Number of builds to show" default:"20"`
	DB    string `help:"Build history database (overrides config)"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	dbPath := cfg.Serve.HistoryDB
	if h.DB != "" {
		dbPath = h.DB
	}
	if dbPath == "" {
		return fmt.Errorf("no build history database configured (serve.history_db)")
	}

	log, err := buildlog.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	entries, err := log.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No builds recorded")
		return nil
	}

	rows := [][]string{{"FINISHED", "OUTCOME", "POSTS", "PAGES", "RENDERED", "SKIPPED", "DURATION"}}
	for _, e := range entries {
		rows = append(rows, []string{
			e.Finished.Format(time.RFC3339),
			e.Outcome,
			strconv.Itoa(e.Posts),
			strconv.Itoa(e.Pages),
			strconv.Itoa(e.RenderedPages),
			strconv.Itoa(e.Skipped),
			(time.Duration(e.DurationMS) * time.Millisecond).String(),
		})
	}
	printTable(rows)
	return nil
}
