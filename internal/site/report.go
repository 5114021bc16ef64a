package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures metrics about one site build. Timestamps and durations
// live only in the report, never in the generated output tree, so two builds
// of the same content stay byte identical.
type BuildReport struct {
	BuildID          string                   `json:"build_id"`
	Start            time.Time                `json:"start"`
	End              time.Time                `json:"end"`
	Outcome          BuildOutcome             `json:"outcome"`
	Posts            int                      `json:"posts"`
	Pages            int                      `json:"pages"`
	Drafts           int                      `json:"drafts"`
	RenderedPages    int                      `json:"rendered_pages"`
	SkippedDocuments int                      `json:"skipped_documents"`
	FeedItems        int                      `json:"feed_items"`
	StageDurations   map[string]time.Duration `json:"stage_durations"`
	Warnings         []string                 `json:"warnings,omitempty"`
	Errors           []string                 `json:"errors,omitempty"`
}

func newBuildReport() *BuildReport {
	return &BuildReport{
		BuildID:        uuid.NewString(),
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
}

func (r *BuildReport) addWarning(err error) {
	r.Warnings = append(r.Warnings, err.Error())
}

func (r *BuildReport) addError(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// finish stamps the end time and derives the overall outcome.
func (r *BuildReport) finish(err error) {
	r.End = time.Now()
	switch {
	case err != nil:
		r.Outcome = OutcomeFailed
		if se, ok := err.(*StageError); ok && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
		}
	case len(r.Warnings) > 0 || r.SkippedDocuments > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

// Duration returns the total wall time of the build.
func (r *BuildReport) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Persist writes the report as JSON to path. The caller chooses a location
// outside the output directory.
func (r *BuildReport) Persist(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	// #nosec G306 -- the report carries no secrets
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}

// Summary is the compact build result published to notification subscribers
// and stored in the build history.
type Summary struct {
	BuildID       string    `json:"build_id"`
	Outcome       string    `json:"outcome"`
	Posts         int       `json:"posts"`
	Pages         int       `json:"pages"`
	RenderedPages int       `json:"rendered_pages"`
	Skipped       int       `json:"skipped"`
	DurationMS    int64     `json:"duration_ms"`
	Finished      time.Time `json:"finished"`
}

// Summary projects the report into its notification form.
func (r *BuildReport) Summary() Summary {
	return Summary{
		BuildID:       r.BuildID,
		Outcome:       string(r.Outcome),
		Posts:         r.Posts,
		Pages:         r.Pages,
		RenderedPages: r.RenderedPages,
		Skipped:       r.SkippedDocuments,
		DurationMS:    r.Duration().Milliseconds(),
		Finished:      r.End,
	}
}
