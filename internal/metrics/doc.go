// Package metrics provides observability hooks for planning and sync runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	planner := pipeline.NewPlanner(store, resolver, pipeline.WithRecorder(metrics.NoopRecorder{}))
//
// Watch mode swaps in a PrometheusRecorder and serves it with HTTPHandler.
package metrics
