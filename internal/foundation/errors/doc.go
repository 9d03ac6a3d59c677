// Package errors provides foundational, type-safe error primitives used across pivot.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: owning subsystem, which also fixes the exit code
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: whether a retry can help (never, backoff, user)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryState, "state file unreadable").
//		WithSeverity(errors.SeverityFatal).
//		WithContext("path", statePath).
//		WithCause(originalErr).
//		Build()
package errors
