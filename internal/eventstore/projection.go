package eventstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

const (
	runStatusRunning = "running"
	runStatusFailed  = "failed"
)

// RunSummary is a read model summarizing one pipeline run.
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Mode         string        `json:"mode"`
	Status       string        `json:"status"` // running, completed, failed
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Planned      int           `json:"planned"`
	PendingFiles int           `json:"pending_files"`
	Advanced     []string      `json:"advanced,omitempty"`
	Failed       []string      `json:"failed,omitempty"`
}

// RunHistoryProjection rebuilds run summaries from the ledger.
type RunHistoryProjection struct {
	mu      sync.RWMutex
	store   Store
	runs    map[string]*RunSummary
	maxSize int
}

// NewRunHistoryProjection creates a projection keeping at most maxSize runs.
func NewRunHistoryProjection(store Store, maxSize int) *RunHistoryProjection {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &RunHistoryProjection{store: store, runs: make(map[string]*RunSummary), maxSize: maxSize}
}

// Rebuild replays every stored event.
func (p *RunHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.Range(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs = make(map[string]*RunSummary)
	for _, e := range events {
		p.applyLocked(e)
	}
	return nil
}

// Apply folds a single event into the projection.
func (p *RunHistoryProjection) Apply(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(e)
}

func (p *RunHistoryProjection) applyLocked(e Event) {
	runID := e.RunID()
	if runID == "" {
		return
	}
	s, ok := p.runs[runID]
	if !ok {
		s = &RunSummary{RunID: runID, Status: runStatusRunning, StartedAt: e.Timestamp()}
		p.runs[runID] = s
	}

	switch e.Type() {
	case TypeRunStarted:
		var d RunStartedData
		if json.Unmarshal(e.Payload(), &d) == nil {
			s.Mode = d.Mode
		}
		s.StartedAt = e.Timestamp()
	case TypePlanBuilt:
		s.Planned++
		var d PlanBuiltData
		if json.Unmarshal(e.Payload(), &d) == nil {
			s.PendingFiles += len(d.PendingFiles)
		}
	case TypePlanFailed:
		s.Failed = append(s.Failed, e.Repository())
	case TypeCursorAdvanced:
		s.Advanced = append(s.Advanced, e.Repository())
	case TypeRunCompleted:
		done := e.Timestamp()
		s.CompletedAt = &done
		s.Duration = done.Sub(s.StartedAt)
		var d RunCompletedData
		if json.Unmarshal(e.Payload(), &d) == nil && d.Status != "" {
			s.Status = d.Status
		}
		if len(s.Failed) > 0 && s.Status != runStatusFailed {
			s.Status = runStatusFailed
		}
	}
}

// History returns the newest runs first, bounded by the projection size.
func (p *RunHistoryProjection) History() []RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]RunSummary, 0, len(p.runs))
	for _, s := range p.runs {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > p.maxSize {
		out = out[:p.maxSize]
	}
	return out
}

// Run returns the summary of a single run.
func (p *RunHistoryProjection) Run(runID string) (RunSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.runs[runID]
	if !ok {
		return RunSummary{}, false
	}
	return *s, true
}
