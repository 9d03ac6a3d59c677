package pipeline

import "time"

// Mode selects whether a run hands off plans and advances cursors.
type Mode string

const (
	ModeDryRun  Mode = "dry_run"
	ModeExecute Mode = "execute"
)

// Outcome is the per-repository result of a run.
type Outcome string

const (
	OutcomeUpToDate  Outcome = "up_to_date"
	OutcomePending   Outcome = "pending"
	OutcomeHandedOff Outcome = "handed_off"
	OutcomeFailed    Outcome = "failed"
)

// RepositoryReport describes what a run did for one repository.
type RepositoryReport struct {
	Name         string
	HeadCommit   string
	Cursor       string
	PendingFiles []string
	Outcome      Outcome
	Advanced     bool
	Err          error
}

// Report summarizes a run.
type Report struct {
	RunID        string
	Mode         Mode
	StartedAt    time.Time
	Duration     time.Duration
	Repositories []RepositoryReport
}

// PendingCount is the total number of pending files across repositories.
func (r *Report) PendingCount() int {
	n := 0
	for _, repo := range r.Repositories {
		n += len(repo.PendingFiles)
	}
	return n
}

// Failed reports whether any repository failed.
func (r *Report) Failed() bool {
	for _, repo := range r.Repositories {
		if repo.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

func (r *Report) add(rr RepositoryReport) *RepositoryReport {
	r.Repositories = append(r.Repositories, rr)
	return &r.Repositories[len(r.Repositories)-1]
}

func reportFor(plan *RepositoryPlan) RepositoryReport {
	outcome := OutcomeUpToDate
	if plan.HasPendingWork() {
		outcome = OutcomePending
	}
	return RepositoryReport{
		Name:         plan.Repository.Name,
		HeadCommit:   plan.HeadCommit,
		Cursor:       plan.Cursor,
		PendingFiles: plan.PendingFiles,
		Outcome:      outcome,
	}
}
