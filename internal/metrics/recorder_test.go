package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("render_documents", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("feed", ResultSuccess)
	r.IncBuildOutcome("success")
	r.AddPagesRendered(3)
	r.AddDocumentsSkipped(1)
	r.ObserveContentSyncDuration("repo", time.Second, true)
}

func TestPrometheusRecorderRegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveStageDuration("render_documents", 120*time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("render_documents", ResultSuccess)
	r.IncBuildOutcome("success")
	r.AddPagesRendered(7)
	r.AddDocumentsSkipped(2)
	r.ObserveContentSyncDuration("blog-content", 300*time.Millisecond, true)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["blogbuilder_stage_duration_seconds"])
	assert.True(t, names["blogbuilder_build_duration_seconds"])
	assert.True(t, names["blogbuilder_stage_results_total"])
	assert.True(t, names["blogbuilder_build_outcomes_total"])
	assert.True(t, names["blogbuilder_pages_rendered_total"])
	assert.True(t, names["blogbuilder_documents_skipped_total"])
	assert.True(t, names["blogbuilder_content_sync_duration_seconds"])
}

func TestPrometheusRecorderNilReceiver(t *testing.T) {
	var r *PrometheusRecorder
	r.ObserveStageDuration("x", time.Second)
	r.IncBuildOutcome("failed")
	r.AddPagesRendered(1)
}
