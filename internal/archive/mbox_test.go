package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/emersion/go-message/mail"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/issuebox/internal/model"
)

func testMessage(id, inReplyTo string) model.Message {
	msg := model.Message{
		Subject:   "Crash on startup",
		From:      model.Address{Name: "alice", Email: "alice@noreply.github.com"},
		To:        model.Address{Name: "acme/widgets", Email: "widgets@noreply.github.com"},
		Date:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		MessageID: id,
		Body: model.Body{
			Plain: "It crashes.",
			HTML:  "<p>It crashes.</p>",
		},
	}
	if inReplyTo != "" {
		msg.Subject = "Re: " + msg.Subject
		msg.InReplyTo = inReplyTo
		msg.References = inReplyTo
	}
	return msg
}

// readMessages parses every message back out of the mbox file.
func readMessages(t *testing.T, path string) []*mail.Reader {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	var readers []*mail.Reader
	mr := mbox.NewReader(f)
	for {
		r, err := mr.NextMessage()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		parsed, err := mail.CreateReader(r)
		require.NoError(t, err)
		readers = append(readers, parsed)
	}
	return readers
}

func TestWriterAppendsThreadInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.mbox")

	root := testMessage("acme/widgets/issues/7/0@github.com", "")
	reply := testMessage("acme/widgets/issues/7/101@github.com", root.MessageID)

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.AppendThread(model.Thread{Messages: []model.Message{root, reply}}))
	require.NoError(t, w.Close())

	msgs := readMessages(t, path)
	require.Len(t, msgs, 2)

	rootID, err := msgs[0].Header.MessageID()
	require.NoError(t, err)
	assert.Equal(t, root.MessageID, rootID)

	subject, err := msgs[0].Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Crash on startup", subject)

	replyTo, err := msgs[1].Header.MsgIDList("In-Reply-To")
	require.NoError(t, err)
	assert.Equal(t, []string{root.MessageID}, replyTo)

	refs, err := msgs[1].Header.MsgIDList("References")
	require.NoError(t, err)
	assert.Equal(t, []string{root.MessageID}, refs)

	rootReplyTo, _ := msgs[0].Header.MsgIDList("In-Reply-To")
	assert.Empty(t, rootReplyTo)
}

func TestWriterAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.mbox")
	msg := testMessage("acme/widgets/issues/7/0@github.com", "")

	for range 2 {
		w, err := NewWriter(path)
		require.NoError(t, err)
		require.NoError(t, w.AppendThread(model.Thread{Messages: []model.Message{msg}}))
		require.NoError(t, w.Close())
	}

	assert.Len(t, readMessages(t, path), 2)
}

func TestWriterHoldsLockUntilClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.mbox")

	w, err := NewWriter(path)
	require.NoError(t, err)

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	assert.False(t, locked, "archive lock should be exclusive while writing")

	require.NoError(t, w.Close())

	locked, err = other.TryLock()
	require.NoError(t, err)
	assert.True(t, locked, "archive lock should be released after close")
	require.NoError(t, other.Unlock())
}

func TestEncodeAlternativeParts(t *testing.T) {
	var sb strings.Builder
	msg := testMessage("acme/widgets/issues/7/0@github.com", "")

	require.NoError(t, Encode(&sb, &msg))

	parsed, err := mail.CreateReader(strings.NewReader(sb.String()))
	require.NoError(t, err)

	var types []string
	var bodies []string
	for {
		part, err := parsed.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		header, ok := part.Header.(*mail.InlineHeader)
		require.True(t, ok)
		ct, _, err := header.ContentType()
		require.NoError(t, err)
		types = append(types, ct)

		body, err := io.ReadAll(part.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(body))
	}

	require.Equal(t, []string{"text/html", "text/plain"}, types)
	assert.Equal(t, "<p>It crashes.</p>", bodies[0])
	assert.Equal(t, "It crashes.", bodies[1])
}

func TestEncodeDegradedSinglePart(t *testing.T) {
	var sb strings.Builder
	msg := testMessage("acme/widgets/issues/7/0@github.com", "")
	msg.Body = model.Body{Plain: "plain only", Degraded: true}

	require.NoError(t, Encode(&sb, &msg))

	parsed, err := mail.CreateReader(strings.NewReader(sb.String()))
	require.NoError(t, err)

	part, err := parsed.NextPart()
	require.NoError(t, err)
	header, ok := part.Header.(*mail.InlineHeader)
	require.True(t, ok)
	ct, _, err := header.ContentType()
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)

	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "plain only", string(body))

	_, err = parsed.NextPart()
	assert.Equal(t, io.EOF, err)
}
