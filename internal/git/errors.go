package git

import (
	stderrors "errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/pivot/internal/foundation/errors"
)

// Typed git errors enabling classification without string parsing upstream.
type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

// RemoteDivergedError reports a remote branch that no longer contains the local head.
type RemoteDivergedError struct {
	Op, URL, Branch string
	Err             error
}

func (e *RemoteDivergedError) Error() string {
	return fmt.Sprintf("%s remote diverged %s@%s: %v", e.Op, e.URL, e.Branch, e.Err)
}
func (e *RemoteDivergedError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Op, URL string
	Err     error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited %s: %v", e.Op, e.URL, e.Err)
}
func (e *RateLimitError) Unwrap() error { return e.Err }

type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s timeout %s: %v", e.Op, e.URL, e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

// classifyTransportError wraps clone and fetch failures into typed variants when possible.
func classifyTransportError(op, url string, err error) error {
	if err == nil {
		return nil
	}
	if isTyped(err) {
		return err
	}
	switch {
	case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed):
		return &AuthError{Op: op, URL: url, Err: err}
	case stderrors.Is(err, transport.ErrRepositoryNotFound):
		return &NotFoundError{Op: op, URL: url, Err: err}
	}
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") || strings.Contains(l, "invalid username or password"):
		return &AuthError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "couldn't find remote ref") || strings.Contains(l, "reference not found"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "repository not found") || strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		return &UnsupportedProtocolError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		return &RateLimitError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "timeout"):
		return &NetworkTimeoutError{Op: op, URL: url, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, url, err)
}

func isTyped(err error) bool {
	return stderrors.As(err, new(*AuthError)) ||
		stderrors.As(err, new(*NotFoundError)) ||
		stderrors.As(err, new(*UnsupportedProtocolError)) ||
		stderrors.As(err, new(*RemoteDivergedError)) ||
		stderrors.As(err, new(*RateLimitError)) ||
		stderrors.As(err, new(*NetworkTimeoutError))
}

// isPermanentGitError reports failures that retrying cannot fix.
func isPermanentGitError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case stderrors.As(err, new(*AuthError)),
		stderrors.As(err, new(*NotFoundError)),
		stderrors.As(err, new(*UnsupportedProtocolError)),
		stderrors.As(err, new(*RemoteDivergedError)):
		return true
	case stderrors.As(err, new(*RateLimitError)), stderrors.As(err, new(*NetworkTimeoutError)):
		return false
	}
	var nerr net.Error
	if stderrors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission denied") || strings.Contains(msg, "invalid reference")
}

// ClassifyGitError translates git failures into ClassifiedErrors. Typed errors stay
// reachable through the cause chain.
func ClassifyGitError(err error, op string, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	builder := errors.GitError("git operation failed").
		WithCause(err).
		WithContext("op", op).
		WithContext("url", url)

	switch {
	case stderrors.As(err, new(*AuthError)):
		builder.WithCategory(errors.CategoryAuth).UserAction()
	case stderrors.As(err, new(*NotFoundError)):
		builder.WithCategory(errors.CategoryNotFound).UserAction()
	case stderrors.As(err, new(*UnsupportedProtocolError)):
		builder.WithCategory(errors.CategoryConfig).Fatal()
	case stderrors.As(err, new(*RemoteDivergedError)):
		builder.WithContext("diverged", true).UserAction()
	case stderrors.As(err, new(*RateLimitError)), stderrors.As(err, new(*NetworkTimeoutError)):
		builder.WithCategory(errors.CategoryNetwork).Retryable()
	}
	return builder.Build()
}
