// Package source defines the remote collaborator boundary: the issue
// tracker that lists issues, comments and labels, and the error types
// that distinguish connectivity failures from bad source data.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/issuebox/internal/model"
)

// AuthError indicates that authentication has failed for the tracker.
// It is returned by clients when a 401 response is received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// APIError wraps any other tracker API failure. Remote-access errors
// abort the whole run; they are typed so operators can tell them apart
// from bad-data errors raised during message synthesis.
type APIError struct {
	Op  string
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracker api error (%s): %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err (or any error in its chain) is an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Tracker is the contract the archive run needs from the remote issue
// tracker. All fetching happens up front; the returned snapshots are
// read-only input for thread building.
type Tracker interface {
	// RateLimit returns a human-readable rate limit status line for
	// diagnostic display.
	RateLimit(ctx context.Context) (string, error)

	// Repository fetches metadata for the "owner/name" repository.
	Repository(ctx context.Context, fullName string) (model.Repository, error)

	// Issues fetches all issues of repo matching state (all, open or
	// closed) in ascending order, each with its ordered comments and
	// labels.
	Issues(ctx context.Context, repo model.Repository, state string) ([]model.Issue, error)
}
