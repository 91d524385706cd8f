package archive

import (
	"fmt"
	"io"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/issuebox/internal/model"
)

// Encode writes msg as an RFC 5322 message. Messages with both
// renderings become multipart/alternative (HTML first, plain last, as
// the tracker's own notification mail does); degraded messages are
// written as a single text/plain part.
func Encode(w io.Writer, msg *model.Message) error {
	var h mail.Header
	h.SetDate(msg.Date)
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*mail.Address{
		{Name: msg.From.Name, Address: msg.From.Email},
	})
	h.SetAddressList("To", []*mail.Address{
		{Name: msg.To.Name, Address: msg.To.Email},
	})
	h.SetMessageID(msg.MessageID)
	if msg.IsReply() {
		h.SetMsgIDList("In-Reply-To", []string{msg.InReplyTo})
		h.SetMsgIDList("References", []string{msg.References})
	}

	if msg.Body.HTML == "" {
		return encodeSinglePart(w, h, msg.Body.Plain)
	}
	return encodeAlternative(w, h, msg.Body)
}

func encodeSinglePart(w io.Writer, h mail.Header, plain string) error {
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	pw, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(pw, plain); err != nil {
		pw.Close()
		return fmt.Errorf("writing plain body: %w", err)
	}
	return pw.Close()
}

func encodeAlternative(w io.Writer, h mail.Header, body model.Body) error {
	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	defer mw.Close()

	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("creating alternative part: %w", err)
	}
	defer iw.Close()

	var htmlHeader mail.InlineHeader
	htmlHeader.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	hp, err := iw.CreatePart(htmlHeader)
	if err != nil {
		return fmt.Errorf("creating html part: %w", err)
	}
	if _, err := io.WriteString(hp, body.HTML); err != nil {
		hp.Close()
		return fmt.Errorf("writing html body: %w", err)
	}
	if err := hp.Close(); err != nil {
		return err
	}

	var plainHeader mail.InlineHeader
	plainHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pp, err := iw.CreatePart(plainHeader)
	if err != nil {
		return fmt.Errorf("creating plain part: %w", err)
	}
	if _, err := io.WriteString(pp, body.Plain); err != nil {
		pp.Close()
		return fmt.Errorf("writing plain body: %w", err)
	}
	return pp.Close()
}
