// Package site assembles the publishable site: it scans the content store,
// classifies and renders documents, generates listing pages and the feed, and
// writes the output tree. The build runs as a sequence of named stages with
// per-stage timing and error classification.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/feed"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// SyncFunc refreshes the content directory before scanning, e.g. by pulling a
// remote repository.
type SyncFunc func(ctx context.Context) error

// Assembler orchestrates one site build from content directory to output tree.
type Assembler struct {
	cfg           *config.Config
	store         *content.Store
	layouts       *layoutSet
	recorder      metrics.Recorder
	outputDir     string
	includeDrafts bool
	sync          SyncFunc
	now           func() time.Time
}

// NewAssembler constructs an Assembler for the given configuration.
func NewAssembler(cfg *config.Config) (*Assembler, error) {
	layouts, err := loadLayouts(cfg.Content.Layouts)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		cfg:       cfg,
		store:     content.NewStore(cfg.Content.Dir, cfg.Content.PostsDir, cfg.Content.DraftsDir),
		layouts:   layouts,
		recorder:  metrics.NoopRecorder{},
		outputDir: filepath.Clean(cfg.Output.Directory),
		now:       time.Now,
	}, nil
}

// SetRecorder injects a metrics recorder. Returns the assembler for chaining.
func (a *Assembler) SetRecorder(r metrics.Recorder) *Assembler {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	a.recorder = r
	return a
}

// SetContentDir points the assembler at a different content directory, used
// when content is synced into an ephemeral workspace.
func (a *Assembler) SetContentDir(dir string) *Assembler {
	a.store = content.NewStore(dir, a.cfg.Content.PostsDir, a.cfg.Content.DraftsDir)
	return a
}

// SetOutputDir overrides the configured output directory.
func (a *Assembler) SetOutputDir(dir string) *Assembler {
	a.outputDir = filepath.Clean(dir)
	return a
}

// IncludeDrafts enables rendering of draft documents under drafts/.
func (a *Assembler) IncludeDrafts(include bool) *Assembler {
	a.includeDrafts = include
	return a
}

// SetContentSync registers a pre-scan content refresh step.
func (a *Assembler) SetContentSync(fn SyncFunc) *Assembler {
	a.sync = fn
	return a
}

// OutputDir returns the directory the assembler writes into.
func (a *Assembler) OutputDir() string { return a.outputDir }

// renderedDoc pairs a document with its rendered fragments for listing pages.
type renderedDoc struct {
	doc     *content.Document
	url     string
	excerpt template.HTML
}

// buildState carries mutable state across stages of one build.
type buildState struct {
	Assembler *Assembler
	Recorder  metrics.Recorder
	Report    *BuildReport
	Docs      []*content.Document
	Files     map[string][]byte // output-relative path -> file content
	Sources   []feed.Source
	posts     []renderedDoc // published posts, for indexes
}

// Build runs all stages and returns the report. The returned error is the
// first fatal stage error; the report is populated either way.
func (a *Assembler) Build(ctx context.Context) (*BuildReport, error) {
	report := newBuildReport()
	slog.Info("starting site build",
		logfields.BuildID(report.BuildID),
		logfields.Output(a.outputDir))

	bs := &buildState{
		Assembler: a,
		Recorder:  a.recorder,
		Report:    report,
		Files:     make(map[string][]byte),
	}

	stages := []namedStage{
		{StagePrepareOutput, stagePrepareOutput},
		{StageSyncContent, stageSyncContent},
		{StageScanContent, stageScanContent},
		{StageClassify, stageClassify},
		{StageRenderDocuments, stageRenderDocuments},
		{StageIndexes, stageIndexes},
		{StageFeed, stageFeed},
		{StageWriteOutput, stageWriteOutput},
	}

	err := runStages(ctx, bs, stages)
	report.finish(err)

	a.recorder.ObserveBuildDuration(report.Duration())
	a.recorder.IncBuildOutcome(string(report.Outcome))
	a.recorder.AddPagesRendered(report.RenderedPages)
	a.recorder.AddDocumentsSkipped(report.SkippedDocuments)

	if err != nil {
		slog.Error("site build failed",
			logfields.BuildID(report.BuildID), logfields.Error(err))
		return report, err
	}
	slog.Info("site build completed",
		logfields.BuildID(report.BuildID),
		slog.String("outcome", string(report.Outcome)),
		slog.Int("posts", report.Posts),
		slog.Int("pages", report.Pages),
		slog.Int("rendered", report.RenderedPages),
		slog.Int("skipped", report.SkippedDocuments),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

// Sync runs the registered content refresh step, if any. Commands that read
// the content store without building (list) call this first so a configured
// remote repository is present on disk.
func (a *Assembler) Sync(ctx context.Context) error {
	if a.sync == nil {
		return nil
	}
	return a.sync(ctx)
}

// Documents scans and classifies the content store without building, used by
// the list command and the preview server's change detection.
func (a *Assembler) Documents() ([]*content.Document, error) {
	docs, err := a.store.Scan()
	if err != nil {
		return nil, err
	}
	kept := docs[:0]
	for _, doc := range docs {
		if err := content.Classify(doc); err != nil {
			if errors.Is(err, content.ErrNoDateInFilename) {
				slog.Warn("skipping post without date prefix",
					logfields.File(doc.RelativePath))
				continue
			}
			return nil, err
		}
		kept = append(kept, doc)
	}
	return kept, nil
}

func stageSyncContent(ctx context.Context, bs *buildState) error {
	a := bs.Assembler
	if a.sync == nil {
		return nil
	}
	start := time.Now()
	err := a.sync(ctx)
	bs.Recorder.ObserveContentSyncDuration(a.syncSource(), time.Since(start), err == nil)
	if err != nil {
		return newFatalStageError(StageSyncContent, err)
	}
	return nil
}

// syncSource labels sync metrics with the remote repository URL, or "local"
// when the refresh step is not repository-backed.
func (a *Assembler) syncSource() string {
	if a.cfg.Content.Repository != nil {
		return a.cfg.Content.Repository.URL
	}
	return "local"
}

func stageScanContent(_ context.Context, bs *buildState) error {
	docs, err := bs.Assembler.store.Scan()
	if err != nil {
		return newFatalStageError(StageScanContent, err)
	}
	bs.Docs = docs
	slog.Debug("content scan completed", logfields.Count(len(docs)))
	return nil
}

func stageClassify(_ context.Context, bs *buildState) error {
	kept := bs.Docs[:0]
	var warned bool
	for _, doc := range bs.Docs {
		if err := content.Classify(doc); err != nil {
			if errors.Is(err, content.ErrNoDateInFilename) {
				slog.Warn("skipping post without date prefix",
					logfields.File(doc.RelativePath))
				bs.Report.SkippedDocuments++
				warned = true
				continue
			}
			return newFatalStageError(StageClassify, err)
		}
		kept = append(kept, doc)
	}
	bs.Docs = kept

	for _, doc := range bs.Docs {
		switch doc.State {
		case content.StatePublished:
			bs.Report.Posts++
		case content.StateDraft:
			bs.Report.Drafts++
		case content.StatePage:
			bs.Report.Pages++
		}
	}
	if warned {
		return newWarnStageError(StageClassify, fmt.Errorf("some posts lacked a date prefix"))
	}
	return nil
}

func stageRenderDocuments(ctx context.Context, bs *buildState) error {
	a := bs.Assembler
	now := a.now()
	var failed int

	for _, doc := range bs.Docs {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageRenderDocuments, ctx.Err())
		default:
		}

		if doc.State == content.StateDraft && !a.includeDrafts {
			continue
		}
		// Future-dated posts stay out of the output until a rebuild after
		// their publish time.
		if doc.State == content.StatePublished && doc.PublishedAt.After(now) {
			slog.Info("deferring future-dated post",
				logfields.Slug(doc.Slug),
				slog.Time("published_at", doc.PublishedAt))
			continue
		}

		if err := a.renderDocument(bs, doc); err != nil {
			slog.Warn("skipping document after render failure",
				logfields.File(doc.RelativePath), logfields.Error(err))
			bs.Report.SkippedDocuments++
			failed++
			continue
		}
		bs.Report.RenderedPages++
	}

	if failed > 0 {
		return newWarnStageError(StageRenderDocuments,
			fmt.Errorf("%d document(s) failed to render", failed))
	}
	return nil
}

// renderDocument renders one document body and wraps it in its layout,
// adding the finished page to the output set.
func (a *Assembler) renderDocument(bs *buildState, doc *content.Document) error {
	excerptMD, contentMD, hasMore := markdown.SplitMore(doc.Body)

	html, err := markdown.Render(contentMD)
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}

	relPath := outputRelPath(doc)
	url := permalink(a.cfg, relPath)

	excerpt, err := a.excerptHTML(doc, excerptMD, hasMore)
	if err != nil {
		return fmt.Errorf("render excerpt: %w", err)
	}

	data := pageData{
		Site:        a.siteData(),
		Title:       doc.Title(),
		Description: doc.Excerpt(),
		Permalink:   url,
		Content:     template.HTML(html),
		ReadingTime: content.ReadingTimeMinutes(doc.WordCount),
		WordCount:   doc.WordCount,
		Draft:       doc.State == content.StateDraft,
	}
	if !doc.PublishedAt.IsZero() {
		data.Date = doc.PublishedAt.Format("January 2, 2006")
		data.ISODate = doc.PublishedAt.Format("2006-01-02")
	}
	for _, c := range doc.Meta.Categories() {
		data.Categories = append(data.Categories, categoryRef{
			Name: c,
			URL:  permalink(a.cfg, categoryRelPath(c)),
		})
	}

	layoutName := a.defaultLayout(doc)
	var buf bytes.Buffer
	if err := a.layouts.lookup(doc.Meta.Layout(layoutName)).Execute(&buf, data); err != nil {
		return fmt.Errorf("execute layout: %w", err)
	}
	bs.Files[relPath] = buf.Bytes()

	if doc.State == content.StatePublished {
		bs.Sources = append(bs.Sources, feed.Source{Doc: doc, HTML: html, URL: url})
		bs.posts = append(bs.posts, renderedDoc{doc: doc, url: url, excerpt: excerpt})
	}
	return nil
}

// excerptHTML derives the listing excerpt: the metadata description when set,
// otherwise the content above the more marker, otherwise the first paragraph.
func (a *Assembler) excerptHTML(doc *content.Document, excerptMD []byte, hasMore bool) (template.HTML, error) {
	if desc := doc.Meta.Description(); desc != "" {
		return template.HTML("<p>" + template.HTMLEscapeString(desc) + "</p>"), nil
	}
	src := excerptMD
	if !hasMore {
		src = []byte(markdown.FirstParagraph(doc.Body))
	}
	if len(bytes.TrimSpace(src)) == 0 {
		return "", nil
	}
	rendered, err := markdown.Render(src)
	if err != nil {
		return "", err
	}
	return template.HTML(rendered), nil
}

func (a *Assembler) siteData() siteData {
	sd := siteData{
		Title:       a.cfg.Site.Title,
		Description: a.cfg.Site.Description,
		Author:      a.cfg.Site.Author,
		Language:    a.cfg.Site.Language,
	}
	if a.cfg.Site.BaseURL != "" {
		sd.FeedURL = a.cfg.CanonicalBaseURL() + "/" + a.cfg.Feed.Path
	}
	return sd
}

func (a *Assembler) defaultLayout(doc *content.Document) string {
	if doc.State == content.StatePage {
		return LayoutPage
	}
	return LayoutPost
}

func stageFeed(_ context.Context, bs *buildState) error {
	f := feed.Build(bs.Assembler.cfg, bs.Sources)
	data, err := feed.Encode(f)
	if err != nil {
		return newFatalStageError(StageFeed, err)
	}
	bs.Files[bs.Assembler.cfg.Feed.Path] = data
	bs.Report.FeedItems = len(f.Items)
	return nil
}
