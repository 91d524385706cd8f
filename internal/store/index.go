// Package store maintains the optional SQLite archive index: one row per
// archived message, recorded after the mbox flush succeeded. The mbox
// file remains the store of record; the index only supports lookup.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/issuebox/internal/model"
)

// Message kinds recorded in the index.
const (
	KindIssue = "issue"
	KindWiki  = "wiki"
)

// Entry is one archived message in the index.
type Entry struct {
	// RunID identifies the archive run that appended the message.
	RunID string `db:"run_id"`

	// MessageID is the message identifier without angle brackets.
	MessageID string `db:"message_id"`

	// ThreadRoot is the identifier of the message's thread root; equal
	// to MessageID for root messages.
	ThreadRoot string `db:"thread_root"`

	// Kind is KindIssue or KindWiki.
	Kind string `db:"kind"`

	// IssueNumber is the source issue number, or 0 for wiki messages.
	IssueNumber int `db:"issue_number"`

	Subject    string    `db:"subject"`
	Date       time.Time `db:"date"`
	ArchivedAt time.Time `db:"archived_at"`
}

// EntriesForThread flattens a thread into index entries.
func EntriesForThread(runID, kind string, issueNumber int, t model.Thread) []Entry {
	root := t.Root()
	if root == nil {
		return nil
	}

	entries := make([]Entry, 0, len(t.Messages))
	for _, msg := range t.Messages {
		entries = append(entries, Entry{
			RunID:       runID,
			MessageID:   msg.MessageID,
			ThreadRoot:  root.MessageID,
			Kind:        kind,
			IssueNumber: issueNumber,
			Subject:     msg.Subject,
			Date:        msg.Date,
		})
	}
	return entries
}

// IndexStore is the SQLite-backed archive index.
type IndexStore struct {
	db *sqlx.DB
}

// NewIndexStore opens (or creates) the index database at dbPath, enables
// WAL mode, and runs any pending schema migrations.
func NewIndexStore(dbPath string) (*IndexStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening index db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &IndexStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *IndexStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *IndexStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordEntries inserts a batch of index entries in one transaction.
func (s *IndexStore) RecordEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO messages (
			run_id, message_id, thread_root, kind,
			issue_number, subject, date, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		_, err = stmt.ExecContext(ctx,
			e.RunID, e.MessageID, e.ThreadRoot, e.Kind,
			e.IssueNumber, e.Subject, e.Date.UTC(), now,
		)
		if err != nil {
			return fmt.Errorf("inserting index entry %s: %w", e.MessageID, err)
		}
	}

	return tx.Commit()
}

// EntriesByRun retrieves every entry of one run in insertion order.
func (s *IndexStore) EntriesByRun(ctx context.Context, runID string) ([]Entry, error) {
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT * FROM messages WHERE run_id = ? ORDER BY rowid", runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries for run %s: %w", runID, err)
	}
	return entries, nil
}

// Count returns the total number of indexed messages.
func (s *IndexStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM messages"); err != nil {
		return 0, fmt.Errorf("counting index entries: %w", err)
	}
	return count, nil
}
