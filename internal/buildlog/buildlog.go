// Package buildlog persists a history of build results in SQLite, backing the
// history command and the preview server's rebuild loop.
package buildlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// Entry is one recorded build.
type Entry struct {
	ID            int64
	BuildID       string
	Outcome       string
	Posts         int
	Pages         int
	RenderedPages int
	Skipped       int
	DurationMS    int64
	Finished      time.Time
}

// Log stores build summaries in a SQLite database.
type Log struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and if needed creates) the build log. Use ":memory:" for an
// ephemeral database.
func Open(dbPath string) (*Log, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	l := &Log{db: db}
	if err := l.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return l, nil
}

func (l *Log) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		posts INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		rendered_pages INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		finished INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_finished ON builds(finished);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record appends one build summary.
func (l *Log) Record(ctx context.Context, s site.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, outcome, posts, pages, rendered_pages, skipped, duration_ms, finished)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.BuildID, s.Outcome, s.Posts, s.Pages, s.RenderedPages, s.Skipped,
		s.DurationMS, s.Finished.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns the latest builds, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, build_id, outcome, posts, pages, rendered_pages, skipped, duration_ms, finished
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var finishedUnix int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Outcome, &e.Posts, &e.Pages,
			&e.RenderedPages, &e.Skipped, &e.DurationMS, &finishedUnix); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.Finished = time.Unix(finishedUnix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}
