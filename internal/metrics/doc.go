// Package metrics provides build observability for blogbuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	orch, err := pipeline.New(pipeline.Deps{Metrics: metrics.NoopRecorder{}}, opts)
//
// When metrics are enabled the daemon swaps in a PrometheusRecorder and
// exposes its registry with HTTPHandler.
package metrics
