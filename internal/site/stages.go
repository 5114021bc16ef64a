package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
)

// StageName identifies a discrete unit of work in the site build.
type StageName string

const (
	StagePrepareOutput   StageName = "prepare_output"
	StageSyncContent     StageName = "sync_content"
	StageScanContent     StageName = "scan_content"
	StageClassify        StageName = "classify"
	StageRenderDocuments StageName = "render_documents"
	StageIndexes         StageName = "indexes"
	StageFeed            StageName = "feed"
	StageWriteOutput     StageName = "write_output"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *buildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing per stage and stopping
// on the first fatal error. Warning stage errors are recorded and the build
// continues.
func runStages(ctx context.Context, bs *buildState, stages []namedStage) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.name, ctx.Err())
			bs.Report.addError(se)
			return se
		default:
		}

		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.name)] = dur
		bs.Recorder.ObserveStageDuration(string(st.name), dur)

		if err == nil {
			bs.Recorder.IncStageResult(string(st.name), metrics.ResultSuccess)
			slog.Debug("stage completed",
				logfields.Stage(string(st.name)),
				logfields.DurationMS(float64(dur.Milliseconds())))
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			se = newFatalStageError(st.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			bs.Recorder.IncStageResult(string(st.name), metrics.ResultWarning)
			bs.Report.addWarning(se)
			slog.Warn("stage completed with warnings",
				logfields.Stage(string(st.name)), logfields.Error(se))
		default:
			bs.Recorder.IncStageResult(string(st.name), metrics.ResultFatal)
			bs.Report.addError(se)
			return se
		}
	}
	return nil
}
