package metrics

import "time"

// OutcomeLabel enumerates per-repository plan outcomes.
type OutcomeLabel string

const (
	OutcomePending  OutcomeLabel = "pending" // plan has files to hand off
	OutcomeUpToDate OutcomeLabel = "up_to_date"
	OutcomeDiverged OutcomeLabel = "diverged"
	OutcomeFailed   OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the planning pipeline.
type Recorder interface {
	ObservePlanDuration(repo string, d time.Duration)
	IncPlanOutcome(repo string, outcome OutcomeLabel)
	SetPendingFiles(repo string, n int)
	IncCursorAdvance(repo string)
	ObserveSyncDuration(repo string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePlanDuration(string, time.Duration)       {}
func (NoopRecorder) IncPlanOutcome(string, OutcomeLabel)             {}
func (NoopRecorder) SetPendingFiles(string, int)                     {}
func (NoopRecorder) IncCursorAdvance(string)                         {}
func (NoopRecorder) ObserveSyncDuration(string, time.Duration, bool) {}
