package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/pivot/internal/foundation/errors"
)

// Event type names.
const (
	TypeRunStarted       = "run_started"
	TypePlanBuilt        = "plan_built"
	TypePlanFailed       = "plan_failed"
	TypeCursorAdvanced   = "cursor_advanced"
	TypeHandoffPublished = "handoff_published"
	TypeRunCompleted     = "run_completed"
)

// RunStartedData is the payload of a run_started event.
type RunStartedData struct {
	Mode         string   `json:"mode"`
	Repositories []string `json:"repositories"`
}

// PlanBuiltData is the payload of a plan_built event.
type PlanBuiltData struct {
	HeadCommit   string   `json:"head_commit"`
	Cursor       string   `json:"cursor,omitempty"`
	PendingFiles []string `json:"pending_files"`
}

// PlanFailedData is the payload of a plan_failed event.
type PlanFailedData struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// CursorAdvancedData is the payload of a cursor_advanced event.
type CursorAdvancedData struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
}

// HandoffPublishedData is the payload of a handoff_published event.
type HandoffPublishedData struct {
	HeadCommit string `json:"head_commit"`
	FileCount  int    `json:"file_count"`
	Target     string `json:"target"`
}

// RunCompletedData is the payload of a run_completed event.
type RunCompletedData struct {
	Status   string `json:"status"`
	Duration int64  `json:"duration_ms"`
}

func newEvent(runID, eventType, repo string, data any) (*BaseEvent, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.EventStoreError("failed to marshal event payload").
			WithCause(err).
			WithContext("run_id", runID).
			WithContext("type", eventType).
			Build()
	}
	return &BaseEvent{
		EventRunID:      runID,
		EventType:       eventType,
		EventRepository: repo,
		EventTimestamp:  time.Now(),
		EventPayload:    payload,
	}, nil
}

// NewRunStarted creates a run_started event.
func NewRunStarted(runID, mode string, repos []string) (*BaseEvent, error) {
	return newEvent(runID, TypeRunStarted, "", RunStartedData{Mode: mode, Repositories: repos})
}

// NewPlanBuilt creates a plan_built event.
func NewPlanBuilt(runID, repo, head, cursor string, pending []string) (*BaseEvent, error) {
	if pending == nil {
		pending = []string{}
	}
	return newEvent(runID, TypePlanBuilt, repo, PlanBuiltData{HeadCommit: head, Cursor: cursor, PendingFiles: pending})
}

// NewPlanFailed creates a plan_failed event.
func NewPlanFailed(runID, repo, stage, errMsg string) (*BaseEvent, error) {
	return newEvent(runID, TypePlanFailed, repo, PlanFailedData{Stage: stage, Error: errMsg})
}

// NewCursorAdvanced creates a cursor_advanced event.
func NewCursorAdvanced(runID, repo, from, to string) (*BaseEvent, error) {
	return newEvent(runID, TypeCursorAdvanced, repo, CursorAdvancedData{From: from, To: to})
}

// NewHandoffPublished creates a handoff_published event.
func NewHandoffPublished(runID, repo, head string, files int, target string) (*BaseEvent, error) {
	return newEvent(runID, TypeHandoffPublished, repo, HandoffPublishedData{HeadCommit: head, FileCount: files, Target: target})
}

// NewRunCompleted creates a run_completed event.
func NewRunCompleted(runID, status string, d time.Duration) (*BaseEvent, error) {
	return newEvent(runID, TypeRunCompleted, "", RunCompletedData{Status: status, Duration: d.Milliseconds()})
}
