// Package identity produces the stable message identifiers that tie the
// synthesized archive together. All functions are pure: given the same
// repository, issue, comment or page inputs they return the same token,
// across runs and platforms.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
)

// RootComment is the reserved comment id addressing the issue itself
// rather than one of its comments.
const RootComment int64 = 0

// InvalidIdentityError reports malformed identity input, such as an empty
// repository name. It is distinct from network errors so callers can tell
// bad data from bad connectivity.
type InvalidIdentityError struct {
	Field  string
	Reason string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid identity input %s: %s", e.Field, e.Reason)
}

// IsInvalidIdentity reports whether err (or any error in its chain) is an
// InvalidIdentityError.
func IsInvalidIdentity(err error) bool {
	var idErr *InvalidIdentityError
	return errors.As(err, &idErr)
}

// IssueRootID returns the message identifier of an issue's root message,
// using the reserved RootComment id. The id is returned without angle
// brackets.
func IssueRootID(repoFullName string, issue int) (string, error) {
	return issueID(repoFullName, issue, RootComment)
}

// IssueMessageID returns the message identifier of the reply for one
// comment. The reserved RootComment id is rejected here, so a malformed
// comment can never collide with the thread root.
func IssueMessageID(repoFullName string, issue int, comment int64) (string, error) {
	if comment <= 0 {
		return "", &InvalidIdentityError{
			Field:  "comment",
			Reason: fmt.Sprintf("non-positive id %d", comment),
		}
	}
	return issueID(repoFullName, issue, comment)
}

func issueID(repoFullName string, issue int, comment int64) (string, error) {
	if repoFullName == "" {
		return "", &InvalidIdentityError{Field: "repository", Reason: "empty"}
	}
	if issue <= 0 {
		return "", &InvalidIdentityError{
			Field:  "issue",
			Reason: fmt.Sprintf("non-positive number %d", issue),
		}
	}
	return fmt.Sprintf("%s/issues/%d/%d@github.com", repoFullName, issue, comment), nil
}

// WikiRootID returns the single deterministic identifier of the wiki
// thread root for a repository.
func WikiRootID(repoFullName string) (string, error) {
	if repoFullName == "" {
		return "", &InvalidIdentityError{Field: "repository", Reason: "empty"}
	}
	return hexDigest(repoFullName) + "@wiki", nil
}

// WikiPageID returns the identifier of a non-root wiki page message,
// derived from the page path within the cloned tree.
func WikiPageID(repoName, pagePath string) (string, error) {
	if repoName == "" {
		return "", &InvalidIdentityError{Field: "repository", Reason: "empty"}
	}
	if pagePath == "" {
		return "", &InvalidIdentityError{Field: "page", Reason: "empty path"}
	}
	return hexDigest(pagePath) + "@" + repoName + ".wiki", nil
}

func hexDigest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
