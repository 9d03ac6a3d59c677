package errors

// ErrorCategory names the pivot subsystem a failure belongs to. The category
// alone decides the process exit code.
type ErrorCategory string

// Operator input.
const (
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"
)

// Remote systems: upstream git hosts and the hand-off transport.
const (
	CategoryNetwork ErrorCategory = "network"
	CategoryGit     ErrorCategory = "git"
	CategoryNotify  ErrorCategory = "notify"
)

// Local persistence: the cursor file, history checks and the run ledger.
const (
	CategoryState      ErrorCategory = "state"
	CategoryHistory    ErrorCategory = "history"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryEventStore ErrorCategory = "eventstore"
)

const (
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryAuth:       5,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryGit:        8,
	CategoryNotify:     8,
	CategoryHistory:    9,
	CategoryInternal:   10,
	CategoryState:      11,
	CategoryFileSystem: 11,
	CategoryEventStore: 11,
	CategoryDaemon:     12,
}

// ExitCode returns the process exit status for the category; 1 when unmapped.
func (c ErrorCategory) ExitCode() int {
	if code, ok := exitCodes[c]; ok {
		return code
	}
	return 1
}

// ErrorSeverity says how far a failure propagates.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells the caller whether running the same operation again can help.
type RetryStrategy string

const (
	// RetryNever marks failures that repeat until the input changes.
	RetryNever RetryStrategy = "never"
	// RetryBackoff marks transient failures; the sync retry policy owns the delay.
	RetryBackoff RetryStrategy = "backoff"
	// RetryUserAction marks failures that need the operator, e.g. a reset after history divergence.
	RetryUserAction RetryStrategy = "user"
)
