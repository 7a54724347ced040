package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultSkipped  ResultLabel = "skipped"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeDone    BuildOutcomeLabel = "done"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
	BuildOutcomeSkipped BuildOutcomeLabel = "skipped"
)

// CacheResultLabel describes a cache lookup.
type CacheResultLabel string

const (
	CacheHit   CacheResultLabel = "hit"
	CacheMiss  CacheResultLabel = "miss"
	CacheError CacheResultLabel = "error"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	// IncCacheResult counts a bundle restore ("bundle") or per-body lookups ("body").
	IncCacheResult(scope string, result CacheResultLabel, n int)
	IncStateTransition(from, to string)
	SetRenderedPages(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)   {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)           {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)            {}
func (NoopRecorder) IncCacheResult(string, CacheResultLabel, int) {}
func (NoopRecorder) IncStateTransition(string, string)            {}
func (NoopRecorder) SetRenderedPages(int)                         {}
