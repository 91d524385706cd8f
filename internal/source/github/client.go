// Package github implements the tracker collaborator against the GitHub
// REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v68/github"

	"github.com/nhle/issuebox/internal/model"
	"github.com/nhle/issuebox/internal/source"
)

// maxRetries bounds the retry attempts for one paginated API call.
// Client errors are never retried.
const maxRetries = 3

// Client implements source.Tracker using go-github.
type Client struct {
	api *gh.Client
}

// NewClient creates a tracker client authenticating with HTTP basic
// auth. GitHub accepts a personal access token as the password.
func NewClient(user, password string) *Client {
	transport := &gh.BasicAuthTransport{
		Username: user,
		Password: password,
	}
	return &Client{api: gh.NewClient(transport.Client())}
}

// RateLimit returns the rate limit status line shown before fetching.
func (c *Client) RateLimit(ctx context.Context) (string, error) {
	limits, _, err := c.api.RateLimit.Get(ctx)
	if err != nil {
		return "", c.wrap("rate limit", err)
	}

	core := limits.GetCore()
	return fmt.Sprintf(
		"%d/%d requests, last reset at %s (UTC)",
		core.Remaining, core.Limit,
		core.Reset.Time.UTC().Format("2006-01-02 15:04:05"),
	), nil
}

// Repository fetches the metadata of an "owner/name" repository.
func (c *Client) Repository(ctx context.Context, fullName string) (model.Repository, error) {
	owner, name, err := splitFullName(fullName)
	if err != nil {
		return model.Repository{}, err
	}

	var repo *gh.Repository
	err = c.retry(ctx, func() error {
		var apiErr error
		repo, _, apiErr = c.api.Repositories.Get(ctx, owner, name)
		return apiErr
	})
	if err != nil {
		return model.Repository{}, c.wrap("get repository", err)
	}

	return model.Repository{
		FullName: repo.GetFullName(),
		Name:     repo.GetName(),
		CloneURL: repo.GetCloneURL(),
	}, nil
}

// Issues fetches every issue of repo matching state, ascending by
// creation, each with its ordered comments and labels.
func (c *Client) Issues(ctx context.Context, repo model.Repository, state string) ([]model.Issue, error) {
	owner, name, err := splitFullName(repo.FullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.IssueListByRepoOptions{
		State:       state,
		Sort:        "created",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var issues []model.Issue
	for {
		var page []*gh.Issue
		var resp *gh.Response
		err := c.retry(ctx, func() error {
			var apiErr error
			page, resp, apiErr = c.api.Issues.ListByRepo(ctx, owner, name, opts)
			return apiErr
		})
		if err != nil {
			return nil, c.wrap("list issues", err)
		}

		for _, is := range page {
			issue := mapIssue(is)
			issue.Comments, err = c.comments(ctx, owner, name, issue.Number)
			if err != nil {
				return nil, err
			}
			issues = append(issues, issue)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// comments fetches all comments of one issue, ascending by creation.
func (c *Client) comments(ctx context.Context, owner, name string, number int) ([]model.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		Sort:        gh.Ptr("created"),
		Direction:   gh.Ptr("asc"),
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var comments []model.Comment
	for {
		var page []*gh.IssueComment
		var resp *gh.Response
		err := c.retry(ctx, func() error {
			var apiErr error
			page, resp, apiErr = c.api.Issues.ListComments(ctx, owner, name, number, opts)
			return apiErr
		})
		if err != nil {
			return nil, c.wrap(fmt.Sprintf("list comments for issue #%d", number), err)
		}

		for _, comment := range page {
			comments = append(comments, model.Comment{
				ID:        comment.GetID(),
				Author:    comment.GetUser().GetLogin(),
				Body:      comment.GetBody(),
				CreatedAt: comment.GetCreatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// mapIssue converts a go-github issue into the archive's snapshot form.
func mapIssue(is *gh.Issue) model.Issue {
	issue := model.Issue{
		Number:    is.GetNumber(),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		Author:    is.GetUser().GetLogin(),
		Closed:    is.GetState() == "closed",
		CreatedAt: is.GetCreatedAt().Time,
	}
	if is.ClosedAt != nil {
		closed := is.ClosedAt.Time
		issue.ClosedAt = &closed
		issue.Closed = true
	}
	for _, label := range is.Labels {
		issue.Labels = append(issue.Labels, model.Label{Name: label.GetName()})
	}
	return issue
}

// retry runs op with bounded exponential backoff. Client errors other
// than secondary rate limits are permanent.
func (c *Client) retry(ctx context.Context, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
		ctx,
	)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func isPermanent(err error) bool {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return false
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		return code >= 400 && code < 500
	}
	return false
}

// wrap converts a go-github error into the typed tracker errors.
func (c *Client) wrap(op string, err error) error {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil &&
		errResp.Response.StatusCode == http.StatusUnauthorized {
		return &source.AuthError{
			Message: fmt.Sprintf("authentication failed: %v", err),
		}
	}
	return &source.APIError{Op: op, Err: err}
}

// splitFullName splits "owner/name" into its two parts.
func splitFullName(fullName string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", fullName)
	}
	return owner, name, nil
}
