package model

import (
	"strings"
	"time"
)

// Repository holds the metadata of the tracker repository being archived.
type Repository struct {
	// FullName is the "owner/name" form, e.g. "acme/widgets".
	FullName string `json:"full_name"`

	// Name is the short repository name without the owner.
	Name string `json:"name"`

	// CloneURL is the HTTPS clone URL of the main repository.
	CloneURL string `json:"clone_url"`
}

// WikiCloneURL returns the clone URL of the wiki companion repository.
func (r Repository) WikiCloneURL() string {
	return strings.TrimSuffix(r.CloneURL, ".git") + ".wiki.git"
}

// Label is a name attached to an issue; it contributes to subject
// decoration only.
type Label struct {
	Name string `json:"name"`
}

// Comment is a single comment on an issue. The comment sequence of an
// issue is immutable input data, ordered ascending by id.
type Comment struct {
	// ID is the comment's identifier, unique within the issue scope.
	ID int64 `json:"id"`

	// Author is the handle of the comment author.
	Author string `json:"author"`

	// Body is the raw markdown body text.
	Body string `json:"body"`

	// CreatedAt is when the comment was created in the tracker.
	CreatedAt time.Time `json:"created_at"`
}

// Issue is a read-only snapshot of one tracker issue together with its
// ordered comments and labels.
type Issue struct {
	// Number is the issue's identity, unique within the repository.
	Number int `json:"number"`

	// Title is the issue title.
	Title string `json:"title"`

	// Body is the raw markdown body text.
	Body string `json:"body"`

	// Author is the handle of the issue author.
	Author string `json:"author"`

	// Closed reports whether the issue has been closed.
	Closed bool `json:"closed"`

	// ClosedAt is when the issue was closed, if it was.
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	// CreatedAt is when the issue was created in the tracker.
	CreatedAt time.Time `json:"created_at"`

	// Labels are the issue's labels in tracker order.
	Labels []Label `json:"labels,omitempty"`

	// Comments are the issue's comments ascending by id. Order is
	// significant and preserved through archiving.
	Comments []Comment `json:"comments,omitempty"`
}
