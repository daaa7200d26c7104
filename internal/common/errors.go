// Package common holds the errors, logging setup, retry loop and lookaround
// replacement shared by the almanac packages.
package common

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by storage lookups that match nothing.
	ErrNotFound = errors.New("not found")

	ErrPageNotFound    = errors.New("page not found")
	ErrWikiUnavailable = errors.New("wiki unavailable")

	// ErrEventCountMismatch means an event list yielded a different number of
	// date ranges than event links.
	ErrEventCountMismatch = errors.New("event dates and links disagree")
	ErrUnknownServant     = errors.New("unknown servant")

	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an underlying failure with the hint a command prints for
// it, such as which subcommand to run first.
type UserError struct {
	Err  error
	Hint string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Hint
	}
	return e.Hint + ": " + e.Err.Error()
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with a hint for the person running the command.
func NewUserError(hint string, err error) error {
	return &UserError{Hint: hint, Err: err}
}

// IsRetryable reports whether a wiki request that failed with err is worth
// sending again.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrWikiUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
