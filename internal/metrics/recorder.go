// Package metrics provides observability hooks for build and serve metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional with zero overhead when disabled.
// The Prometheus implementation is activated by the preview server when
// serve.metrics is enabled.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// Recorder defines observability hooks for build and stage metrics.
// Implementations may forward to Prometheus or anything else; NoopRecorder is
// the default when metrics are not configured.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed
	AddPagesRendered(n int)
	AddDocumentsSkipped(n int)
	ObserveContentSyncDuration(repo string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)             {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                     {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                     {}
func (NoopRecorder) IncBuildOutcome(string)                                 {}
func (NoopRecorder) AddPagesRendered(int)                                   {}
func (NoopRecorder) AddDocumentsSkipped(int)                                {}
func (NoopRecorder) ObserveContentSyncDuration(string, time.Duration, bool) {}
