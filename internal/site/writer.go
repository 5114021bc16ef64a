package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// stagePrepareOutput ensures the output directory exists, optionally emptying
// it first. An unwritable output root is fatal.
func stagePrepareOutput(_ context.Context, bs *buildState) error {
	a := bs.Assembler
	if a.cfg.Output.Clean {
		if err := cleanDir(a.outputDir); err != nil {
			return newFatalStageError(StagePrepareOutput, err)
		}
	}
	if err := os.MkdirAll(a.outputDir, 0o750); err != nil {
		return newFatalStageError(StagePrepareOutput,
			fmt.Errorf("create output directory: %w", err))
	}
	return nil
}

// cleanDir removes the contents of dir, not dir itself, so a served output
// directory keeps its inode across rebuilds.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	return nil
}

// stageWriteOutput writes every generated file. Existing files are replaced
// unconditionally. A single failed write logs a warning and skips that page;
// the rest of the site is still written.
func stageWriteOutput(ctx context.Context, bs *buildState) error {
	a := bs.Assembler

	paths := make([]string, 0, len(bs.Files))
	for p := range bs.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var failed int
	for _, rel := range paths {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageWriteOutput, ctx.Err())
		default:
		}

		full := filepath.Join(a.outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			slog.Warn("skipping page after directory failure",
				logfields.Path(full), logfields.Error(err))
			bs.Report.SkippedDocuments++
			failed++
			continue
		}
		// #nosec G306 -- generated pages are public assets
		if err := os.WriteFile(full, bs.Files[rel], 0o644); err != nil {
			slog.Warn("skipping page after write failure",
				logfields.Path(full), logfields.Error(err))
			bs.Report.SkippedDocuments++
			failed++
			continue
		}
	}

	slog.Debug("output written",
		logfields.Output(a.outputDir), logfields.Count(len(paths)-failed))
	if failed > 0 {
		return newWarnStageError(StageWriteOutput,
			fmt.Errorf("%d file(s) failed to write", failed))
	}
	return nil
}
