package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/issuebox/internal/model"
)

func validOptions() *model.Options {
	return &model.Options{
		User:       "alice",
		Repository: "acme/widgets",
		IssueState: model.IssueStateAll,
		Output:     "output.mbox",
		Threads:    2,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validOptions().Validate())

	missingUser := validOptions()
	missingUser.User = ""
	assert.ErrorContains(t, missingUser.Validate(), "--user")

	missingRepo := validOptions()
	missingRepo.Repository = ""
	assert.ErrorContains(t, missingRepo.Validate(), "--repository")

	badState := validOptions()
	badState.IssueState = "resolved"
	assert.ErrorContains(t, badState.Validate(), "--issues")

	badThreads := validOptions()
	badThreads.Threads = 0
	assert.ErrorContains(t, badThreads.Validate(), "--threads")
}

func TestValidateAllowsEmptyPassword(t *testing.T) {
	// The password may still come from the keyring; Validate does not
	// require it.
	opts := validOptions()
	opts.Password = ""
	assert.NoError(t, opts.Validate())
}

func TestLoadOptionsMissingFileYieldsDefaults(t *testing.T) {
	opts, err := model.LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, model.IssueStateAll, opts.IssueState)
	assert.Equal(t, "output.mbox", opts.Output)
	assert.Equal(t, 2, opts.Threads)
	assert.Empty(t, opts.User)
	assert.False(t, opts.ArchiveIssues)
	assert.False(t, opts.ArchiveWiki)
}

func TestLoadOptionsReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "user: alice\nrepository: acme/widgets\nissues: closed\nlabels: true\nthreads: 8\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := model.LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", opts.User)
	assert.Equal(t, "acme/widgets", opts.Repository)
	assert.Equal(t, model.IssueStateClosed, opts.IssueState)
	assert.True(t, opts.Labels)
	assert.Equal(t, 8, opts.Threads)
	assert.Equal(t, "output.mbox", opts.Output, "unset keys keep their defaults")
}

func TestLoadOptionsReadsEnvWithoutFile(t *testing.T) {
	t.Setenv("ISSUEBOX_USER", "envalice")
	t.Setenv("ISSUEBOX_OUTPUT", "env.mbox")
	t.Setenv("ISSUEBOX_ARCHIVE_WIKI", "true")

	opts, err := model.LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "envalice", opts.User)
	assert.Equal(t, "env.mbox", opts.Output)
	assert.True(t, opts.ArchiveWiki)
	assert.Equal(t, 2, opts.Threads, "unset keys keep their defaults")
}

func TestLoadOptionsEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "user: filealice\nrepository: acme/widgets\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("ISSUEBOX_USER", "envalice")

	opts, err := model.LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, "envalice", opts.User)
	assert.Equal(t, "acme/widgets", opts.Repository, "keys without env values come from the file")
}

func TestLoadOptionsRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user: [unclosed"), 0o644))

	_, err := model.LoadOptions(path)
	assert.Error(t, err)
}
