package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/issuebox/internal/model"
	"github.com/nhle/issuebox/internal/store"
)

// fakeTracker is an in-memory source.Tracker for run tests.
type fakeTracker struct {
	issues    []model.Issue
	issuesErr error
}

func (f *fakeTracker) RateLimit(context.Context) (string, error) {
	return "4999/5000 requests, last reset at 2024-03-01 00:00:00 (UTC)", nil
}

func (f *fakeTracker) Repository(_ context.Context, fullName string) (model.Repository, error) {
	return model.Repository{
		FullName: fullName,
		Name:     "widgets",
		CloneURL: "https://github.com/" + fullName + ".git",
	}, nil
}

func (f *fakeTracker) Issues(context.Context, model.Repository, string) ([]model.Issue, error) {
	return f.issues, f.issuesErr
}

func testOptions(t *testing.T) *model.Options {
	t.Helper()
	return &model.Options{
		User:          "alice",
		Password:      "secret",
		Repository:    "acme/widgets",
		IssueState:    model.IssueStateAll,
		Output:        filepath.Join(t.TempDir(), "output.mbox"),
		ArchiveIssues: true,
		Threads:       2,
	}
}

func TestArchiveAllFetchFailureLeavesNoArchive(t *testing.T) {
	opts := testOptions(t)
	tracker := &fakeTracker{issuesErr: errors.New("remote unavailable")}

	err := archiveAll(context.Background(), tracker, opts)
	require.Error(t, err)

	// The archive must not be touched before the fetch succeeded.
	_, statErr := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(statErr), "no mbox should exist after a failed fetch")
	_, statErr = os.Stat(opts.Output + ".lock")
	assert.True(t, os.IsNotExist(statErr), "no lock file should exist after a failed fetch")
}

func TestArchiveAllWritesIssuesAndIndex(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	opts := testOptions(t)
	opts.IndexPath = filepath.Join(t.TempDir(), "index.db")

	tracker := &fakeTracker{issues: []model.Issue{
		{
			Number:    1,
			Title:     "Crash on startup",
			Body:      "It crashes.",
			Author:    "alice",
			CreatedAt: created,
			Comments: []model.Comment{
				{ID: 101, Author: "bob", Body: "Can reproduce.", CreatedAt: created.Add(time.Hour)},
			},
		},
		{
			Number:    2,
			Title:     "Add dark mode",
			Body:      "Please.",
			Author:    "bob",
			CreatedAt: created.Add(24 * time.Hour),
		},
	}}

	require.NoError(t, archiveAll(context.Background(), tracker, opts))

	info, err := os.Stat(opts.Output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	idx, err := store.NewIndexStore(opts.IndexPath)
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count, "root + reply for issue 1, root for issue 2")
}

func TestArchiveAllNothingEnabledWritesNothing(t *testing.T) {
	opts := testOptions(t)
	opts.ArchiveIssues = false

	require.NoError(t, archiveAll(context.Background(), &fakeTracker{}, opts))

	_, statErr := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(statErr))
}
