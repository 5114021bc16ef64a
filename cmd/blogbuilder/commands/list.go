package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	State     string `help:"Filter by state (published|draft|page)"`
	Workspace string `help:"Workspace directory for remote content checkouts" default:".blogbuilder"`
}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	assembler, err := newAssembler(cfg, true, "", l.Workspace)
	if err != nil {
		return err
	}
	if err := assembler.Sync(context.Background()); err != nil {
		return fmt.Errorf("sync content: %w", err)
	}
	docs, err := assembler.Documents()
	if err != nil {
		return err
	}

	if l.State != "" {
		want := content.State(strings.ToLower(l.State))
		filtered := docs[:0]
		for _, d := range docs {
			if d.State == want {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].State != docs[j].State {
			return docs[i].State < docs[j].State
		}
		if !docs[i].PublishedAt.Equal(docs[j].PublishedAt) {
			return docs[i].PublishedAt.After(docs[j].PublishedAt)
		}
		return docs[i].Slug < docs[j].Slug
	})

	rows := make([][]string, 0, len(docs)+1)
	rows = append(rows, []string{"STATE", "DATE", "TITLE", "SLUG", "WORDS"})
	for _, d := range docs {
		date := ""
		if !d.PublishedAt.IsZero() {
			date = d.PublishedAt.Format("2006-01-02")
		}
		rows = append(rows, []string{
			string(d.State), date, d.Title(), d.Slug, strconv.Itoa(d.WordCount),
		})
	}
	printTable(rows)
	return nil
}

// printTable aligns columns by display width so wide characters in titles do
// not break the layout.
func printTable(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for _, row := range rows {
		cols := make([]string, len(row))
		for i, cell := range row {
			cols[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Println(strings.TrimRight(strings.Join(cols, "  "), " "))
	}
}
