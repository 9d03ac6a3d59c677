package notify

import "time"

// PlanReady announces a repository with pending documentation files.
type PlanReady struct {
	RunID        string    `json:"run_id"`
	Repository   string    `json:"repository"`
	URL          string    `json:"url"`
	Branch       string    `json:"branch"`
	HeadCommit   string    `json:"head_commit"`
	DocsPath     string    `json:"docs_path"`
	WorkTree     string    `json:"work_tree,omitempty"`
	OutputDir    string    `json:"output_dir,omitempty"`
	PendingFiles []string  `json:"pending_files"`
	CreatedAt    time.Time `json:"created_at"`
}

// MessageID identifies a plan for de-duplication; a re-published plan for the same head keeps its id.
func (m PlanReady) MessageID() string {
	return m.Repository + "@" + m.HeadCommit
}
