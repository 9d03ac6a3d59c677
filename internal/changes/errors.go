package changes

import "fmt"

// HistoryDivergedError reports a cursor that is no longer reachable from head,
// typically after a force push on the remote.
type HistoryDivergedError struct {
	Repository string
	Cursor     string
	Head       string
	Err        error
}

func (e *HistoryDivergedError) Error() string {
	return fmt.Sprintf("history of %s diverged: cursor %s is not an ancestor of %s", e.Repository, e.Cursor, e.Head)
}

func (e *HistoryDivergedError) Unwrap() error { return e.Err }
