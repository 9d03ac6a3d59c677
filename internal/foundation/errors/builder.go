package errors

import "maps"

// ErrorBuilder assembles a ClassifiedError. Builders start as non-retryable errors
// with SeverityError; the constructors below preset category, severity and retry
// for each pivot subsystem.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder for category.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  ErrorContext{},
	}}
}

// WrapError starts a builder for category that wraps err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithCategory reclassifies the error, e.g. a git failure that turns out to be an auth failure.
func (b *ErrorBuilder) WithCategory(category ErrorCategory) *ErrorBuilder {
	b.err.category = category
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Retryable marks the failure as transient.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

// UserAction marks the failure as needing the operator before a retry can help.
func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	b.err.retry = RetryUserAction
	return b
}

// Build returns the error. The builder may be reused; each call yields a distinct value.
func (b *ErrorBuilder) Build() *ClassifiedError {
	built := b.err
	built.context = maps.Clone(b.err.context)
	return &built
}

// ConfigError reports an invalid or unreadable configuration file.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError reports bad command-line input, such as an unknown repository name.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

func AuthError(message string) *ErrorBuilder {
	return NewError(CategoryAuth, message).UserAction()
}

func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

// GitError reports a failed clone, fetch or object lookup.
func GitError(message string) *ErrorBuilder {
	return NewError(CategoryGit, message).Retryable()
}

// StateError reports an unreadable cursor file. Corrupt state is never guessed at, so it is fatal.
func StateError(message string) *ErrorBuilder {
	return NewError(CategoryState, message).Fatal()
}

// HistoryError reports a recorded cursor that is no longer reachable from the branch head.
func HistoryError(message string) *ErrorBuilder {
	return NewError(CategoryHistory, message).UserAction()
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message).Retryable()
}

// EventStoreError reports a run ledger failure.
func EventStoreError(message string) *ErrorBuilder {
	return NewError(CategoryEventStore, message)
}

// NotifyError reports a failed hand-off publish.
func NotifyError(message string) *ErrorBuilder {
	return NewError(CategoryNotify, message).Retryable()
}

func DaemonError(message string) *ErrorBuilder {
	return NewError(CategoryDaemon, message).Fatal()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
