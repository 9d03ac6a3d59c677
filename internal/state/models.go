package state

// RepositoryState is the persisted record for one tracked repository.
// A nil LastSyncedCommit means the repository was never processed.
type RepositoryState struct {
	LastSyncedCommit *string `json:"last_synced_commit"`
}

// NeverProcessed returns the default state for unknown repositories.
func NeverProcessed() RepositoryState {
	return RepositoryState{}
}

// ProcessedAt returns a state whose cursor points at commit.
func ProcessedAt(commit string) RepositoryState {
	if commit == "" {
		return NeverProcessed()
	}
	return RepositoryState{LastSyncedCommit: &commit}
}

// Processed reports whether a cursor has been recorded.
func (s RepositoryState) Processed() bool {
	return s.LastSyncedCommit != nil && *s.LastSyncedCommit != ""
}

// Commit returns the recorded cursor or "" when never processed.
func (s RepositoryState) Commit() string {
	if s.LastSyncedCommit == nil {
		return ""
	}
	return *s.LastSyncedCommit
}

func (s RepositoryState) clone() RepositoryState {
	if s.LastSyncedCommit == nil {
		return RepositoryState{}
	}
	c := *s.LastSyncedCommit
	return RepositoryState{LastSyncedCommit: &c}
}
