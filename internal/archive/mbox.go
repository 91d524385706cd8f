// Package archive appends synthesized message threads to an on-disk
// mbox file. All writing happens under one exclusive file lock held from
// before the first append until after the final flush, so another
// process never observes a half-written store.
package archive

import (
	"errors"
	"fmt"
	"os"

	"github.com/emersion/go-mbox"
	"github.com/gofrs/flock"

	"github.com/nhle/issuebox/internal/model"
)

// Writer appends messages to a single mbox file. Appends are strictly
// sequential; Writer is not safe for concurrent use and does not need to
// be, since archiving is the serial drain of the build pipeline.
type Writer struct {
	path string
	lock *flock.Flock
	f    *os.File
	mw   *mbox.Writer
}

// NewWriter acquires the exclusive archive lock, then opens (creating if
// needed) the mbox file at path for appending. Re-running against the
// same path appends again; the archive is never deduplicated.
func NewWriter(path string) (*Writer, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking archive %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}

	return &Writer{
		path: path,
		lock: lock,
		f:    f,
		mw:   mbox.NewWriter(f),
	}, nil
}

// AppendThread appends every message of t, in thread order.
func (w *Writer) AppendThread(t model.Thread) error {
	for i := range t.Messages {
		msg := &t.Messages[i]
		if err := w.appendMessage(msg); err != nil {
			return fmt.Errorf("appending message %s: %w", msg.MessageID, err)
		}
	}
	return nil
}

func (w *Writer) appendMessage(msg *model.Message) error {
	mw, err := w.mw.CreateMessage(msg.From.Email, msg.Date)
	if err != nil {
		return fmt.Errorf("creating mbox entry: %w", err)
	}
	return Encode(mw, msg)
}

// Close flushes the archive to stable storage, closes the file and
// releases the lock. The lock is released on every path, including
// flush failure, so a crash cannot leave the store locked.
func (w *Writer) Close() error {
	defer w.lock.Unlock()

	var errs []error
	if err := w.mw.Close(); err != nil {
		errs = append(errs, fmt.Errorf("finishing mbox: %w", err))
	}
	if err := w.f.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("flushing archive: %w", err))
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing archive: %w", err))
	}
	return errors.Join(errs...)
}
