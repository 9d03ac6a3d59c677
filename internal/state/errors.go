package state

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupt marks a state file that exists but does not hold the expected mapping.
	ErrCorrupt = errors.New("corrupt state file")
	// ErrIO marks a state file that could not be read or written.
	ErrIO = errors.New("state file i/o failure")
)

// CorruptError reports a state file that cannot be interpreted. It is fatal for the run.
type CorruptError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("state file %s is corrupt: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("state file %s is corrupt: %s", e.Path, e.Reason)
}

func (e *CorruptError) Unwrap() error        { return e.Err }
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// IOError reports a failed read or write of the state file. After a failed write
// the in-memory state is ahead of the file; callers retry the run or abort.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s state file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error        { return e.Err }
func (e *IOError) Is(target error) bool { return target == ErrIO }
