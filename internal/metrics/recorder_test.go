package metrics

import (
	"testing"
	"time"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("rendering", time.Millisecond)
	r.ObserveBuildDuration(time.Millisecond)
	r.IncStageResult("rendering", ResultFailed)
	r.IncBuildOutcome(BuildOutcomeSkipped)
	r.IncCacheResult("bundle", CacheMiss, 1)
	r.IncStateTransition("Idle", "Failed")
	r.SetRenderedPages(0)
}
