// Package wiki materializes a repository's wiki content tree at an
// ephemeral local path for archiving.
package wiki

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/nhle/issuebox/internal/model"
)

// Clone performs a shallow clone of repo's wiki into a temporary
// directory and returns its path together with a cleanup function that
// removes the tree. user and password authenticate the clone; empty
// values clone anonymously.
func Clone(ctx context.Context, repo model.Repository, user, password string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "issuebox-wiki-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating wiki clone dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	opts := &git.CloneOptions{
		URL:   repo.WikiCloneURL(),
		Depth: 1,
	}
	if password != "" {
		opts.Auth = &githttp.BasicAuth{Username: user, Password: password}
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("cloning wiki %s: %w", opts.URL, err)
	}

	return dir, cleanup, nil
}
