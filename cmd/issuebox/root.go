package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nhle/issuebox/internal/archive"
	"github.com/nhle/issuebox/internal/compose"
	"github.com/nhle/issuebox/internal/credential"
	"github.com/nhle/issuebox/internal/model"
	"github.com/nhle/issuebox/internal/pool"
	"github.com/nhle/issuebox/internal/progress"
	"github.com/nhle/issuebox/internal/render"
	"github.com/nhle/issuebox/internal/source"
	"github.com/nhle/issuebox/internal/source/github"
	"github.com/nhle/issuebox/internal/store"
	"github.com/nhle/issuebox/internal/wiki"
)

var (
	configPath string
	flagOpts   model.Options
)

var rootCmd = &cobra.Command{
	Use:   "issuebox",
	Short: "Archive a GitHub repository's issues and wiki into a local mbox file",
	Long: `issuebox converts a GitHub repository's issues (with their comments and
labels) and wiki pages into threaded email messages and appends them to a
local mbox file, so any mail client can browse the archive offline.

Each issue becomes one thread: the issue body is the root message and every
comment replies to it, in comment order. The wiki becomes one more thread
rooted at its entry page. Re-running appends again; the archive is never
deduplicated.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runArchive,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagOpts.User, "user", "u", "", "tracker API user name")
	f.StringVarP(&flagOpts.Password, "password", "p", "", "tracker API password or token (falls back to the keyring)")
	f.StringVarP(&flagOpts.Repository, "repository", "r", "", `repository to archive, as "owner/name"`)
	f.StringVarP(&flagOpts.IssueState, "issues", "i", model.IssueStateAll, "issue state filter: all, open or closed")
	f.StringVarP(&flagOpts.Output, "output", "o", "output.mbox", "mbox file to append to")
	f.BoolVarP(&flagOpts.Labels, "labels", "l", false, "decorate subjects with label names and a [CLOSED] marker")
	f.BoolVarP(&flagOpts.ArchiveIssues, "archive-issues", "I", false, "archive the issue tracker")
	f.BoolVarP(&flagOpts.ArchiveWiki, "archive-wiki", "W", false, "archive the wiki")
	f.IntVarP(&flagOpts.Threads, "threads", "t", 2, "worker count for building issue threads")
	f.StringVar(&flagOpts.IndexPath, "index", "", "record archived messages in a SQLite index at this path")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file path")

	rootCmd.AddCommand(authCmd)
}

// resolveOptions loads the config file and overlays every flag the user
// set explicitly, so flags always win over file and environment values.
func resolveOptions(cmd *cobra.Command) (*model.Options, error) {
	opts, err := model.LoadOptions(configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("user") {
		opts.User = flagOpts.User
	}
	if f.Changed("password") {
		opts.Password = flagOpts.Password
	}
	if f.Changed("repository") {
		opts.Repository = flagOpts.Repository
	}
	if f.Changed("issues") {
		opts.IssueState = flagOpts.IssueState
	}
	if f.Changed("output") {
		opts.Output = flagOpts.Output
	}
	if f.Changed("labels") {
		opts.Labels = flagOpts.Labels
	}
	if f.Changed("archive-issues") {
		opts.ArchiveIssues = flagOpts.ArchiveIssues
	}
	if f.Changed("archive-wiki") {
		opts.ArchiveWiki = flagOpts.ArchiveWiki
	}
	if f.Changed("threads") {
		opts.Threads = flagOpts.Threads
	}
	if f.Changed("index") {
		opts.IndexPath = flagOpts.IndexPath
	}

	return opts, nil
}

func runArchive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	// Keyring fallback: a stored token stands in for --password. Either
	// way the credential must be resolved before any network activity.
	if opts.Password == "" {
		token, err := credential.Token(opts.User)
		if err != nil || token == "" {
			return fmt.Errorf(
				"missing option: --password is required (no stored token for %q; run \"issuebox auth\")",
				opts.User,
			)
		}
		opts.Password = token
	}

	return archiveAll(ctx, github.NewClient(opts.User, opts.Password), opts)
}

// archiveAll runs one archive pass against tracker: report the rate
// limit, fetch everything the issue phase needs, then open the store and
// write. Issue data is fetched before the archive is opened, so a failed
// fetch leaves no empty mbox or lock file behind.
func archiveAll(ctx context.Context, tracker source.Tracker, opts *model.Options) error {
	status, err := tracker.RateLimit(ctx)
	if err != nil {
		return err
	}
	log.Printf("rate limit: %s", status)

	if !opts.ArchiveIssues && !opts.ArchiveWiki {
		log.Printf("nothing to archive: neither --archive-issues nor --archive-wiki is set")
		return nil
	}

	repo, err := tracker.Repository(ctx, opts.Repository)
	if err != nil {
		return err
	}

	var issues []model.Issue
	if opts.ArchiveIssues {
		issues, err = tracker.Issues(ctx, repo, opts.IssueState)
		if err != nil {
			return err
		}
	}

	writer, err := archive.NewWriter(opts.Output)
	if err != nil {
		return err
	}

	builder := compose.NewBuilder(render.New(), opts.Labels)
	runID := uuid.NewString()

	var recorded []store.Entry
	archiveErr := func() error {
		if opts.ArchiveIssues {
			if err := archiveIssues(ctx, builder, writer, repo, issues, opts, runID, &recorded); err != nil {
				return err
			}
		}
		if opts.ArchiveWiki {
			if err := archiveWiki(ctx, builder, writer, repo, opts, runID, &recorded); err != nil {
				return err
			}
		}
		return nil
	}()

	// The lock is held until Close, and Close flushes; run both error
	// paths through it so a failed run never leaves the store locked.
	if err := errors.Join(archiveErr, writer.Close()); err != nil {
		return err
	}

	// Index rows are recorded only after the flush succeeded, so the
	// index never claims a message the mbox might not hold.
	if opts.IndexPath != "" {
		return recordIndex(ctx, opts.IndexPath, recorded)
	}
	return nil
}

// archiveIssues builds the fetched issues' threads across the worker
// pool and appends them in issue order.
func archiveIssues(
	ctx context.Context,
	builder *compose.Builder,
	writer *archive.Writer,
	repo model.Repository,
	issues []model.Issue,
	opts *model.Options,
	runID string,
	recorded *[]store.Entry,
) error {
	if len(issues) == 0 {
		log.Printf("no issues matched state %q", opts.IssueState)
		return nil
	}

	bar := progress.NewBar(os.Stderr, "Issues", len(issues))

	type built struct {
		issue  model.Issue
		thread model.Thread
	}

	return pool.OrderedMap(ctx, opts.Threads, issues,
		func(_ context.Context, issue model.Issue) (built, error) {
			thread, err := builder.IssueThread(repo, issue)
			if err != nil {
				return built{}, err
			}
			return built{issue: issue, thread: thread}, nil
		},
		func(b built) error {
			bar.Tick()
			if err := writer.AppendThread(b.thread); err != nil {
				return err
			}
			*recorded = append(*recorded,
				store.EntriesForThread(runID, store.KindIssue, b.issue.Number, b.thread)...)
			return nil
		},
	)
}

// archiveWiki clones the wiki into a temporary tree, builds its single
// thread and appends it.
func archiveWiki(
	ctx context.Context,
	builder *compose.Builder,
	writer *archive.Writer,
	repo model.Repository,
	opts *model.Options,
	runID string,
	recorded *[]store.Entry,
) error {
	dir, cleanup, err := wiki.Clone(ctx, repo, opts.User, opts.Password)
	if err != nil {
		return err
	}
	defer cleanup()

	thread, err := builder.WikiThread(repo, dir, progress.Logs(os.Stderr))
	if err != nil {
		return err
	}
	if len(thread.Messages) == 0 {
		log.Printf("wiki for %s has no pages", repo.FullName)
		return nil
	}

	if err := writer.AppendThread(thread); err != nil {
		return err
	}
	*recorded = append(*recorded,
		store.EntriesForThread(runID, store.KindWiki, 0, thread)...)
	return nil
}

// recordIndex writes the run's index entries to the SQLite database at
// path, creating it on first use.
func recordIndex(ctx context.Context, path string, entries []store.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	idx, err := store.NewIndexStore(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	return idx.RecordEntries(ctx, entries)
}
