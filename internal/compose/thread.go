// Package compose assembles ordered message threads from tracker issues
// and wiki page trees: one root message per issue or wiki, with every
// follower replying to that root.
package compose

import (
	"fmt"
	"log"
	"time"

	"github.com/nhle/issuebox/internal/identity"
	"github.com/nhle/issuebox/internal/model"
	"github.com/nhle/issuebox/internal/render"
)

// BodyRenderer produces the dual-representation payload of a message
// body. Satisfied by *render.Renderer.
type BodyRenderer interface {
	Render(body string) render.Result
}

// Builder turns source objects into message threads. It performs no
// external I/O of its own; issue threads are pure transformations of
// their inputs.
type Builder struct {
	renderer       BodyRenderer
	decorateLabels bool
	logf           func(format string, args ...any)
	now            func() time.Time
}

// NewBuilder creates a Builder. decorateLabels enables subject decoration
// with label names and the closed-state marker.
func NewBuilder(renderer BodyRenderer, decorateLabels bool) *Builder {
	return &Builder{
		renderer:       renderer,
		decorateLabels: decorateLabels,
		logf:           log.Printf,
		now:            time.Now,
	}
}

// IssueThread builds the ordered message sequence for one issue: the
// root message first, then one reply per comment in comment order. All
// replies link to the root identifier; comments never reply to each
// other.
func (b *Builder) IssueThread(repo model.Repository, issue model.Issue) (model.Thread, error) {
	if issue.Title == "" {
		return model.Thread{}, &MissingFieldError{
			Object: fmt.Sprintf("issue #%d", issue.Number),
			Field:  "title",
		}
	}

	to, err := repositoryAddress(repo)
	if err != nil {
		return model.Thread{}, err
	}
	from, err := authorAddress(fmt.Sprintf("issue #%d", issue.Number), issue.Author)
	if err != nil {
		return model.Thread{}, err
	}
	rootID, err := identity.IssueRootID(repo.FullName, issue.Number)
	if err != nil {
		return model.Thread{}, err
	}

	// The decorated subject is computed once and shared by the root and
	// every reply.
	subject := b.subject(issue)
	replySubject := "Re: " + subject

	messages := make([]model.Message, 0, len(issue.Comments)+1)
	messages = append(messages, model.Message{
		Subject:   subject,
		From:      from,
		To:        to,
		Date:      issue.CreatedAt,
		MessageID: rootID,
		Body:      b.renderBody(rootID, issue.Body),
	})

	for _, comment := range issue.Comments {
		id, err := identity.IssueMessageID(repo.FullName, issue.Number, comment.ID)
		if err != nil {
			return model.Thread{}, err
		}
		commentFrom, err := authorAddress(
			fmt.Sprintf("comment %d on issue #%d", comment.ID, issue.Number),
			comment.Author,
		)
		if err != nil {
			return model.Thread{}, err
		}

		messages = append(messages, model.Message{
			Subject:    replySubject,
			From:       commentFrom,
			To:         to,
			Date:       comment.CreatedAt,
			MessageID:  id,
			InReplyTo:  rootID,
			References: rootID,
			Body:       b.renderBody(id, comment.Body),
		})
	}

	return model.Thread{Messages: messages}, nil
}

// renderBody renders a message body, logging when the HTML rendering
// degraded so the failure stays visible without aborting the thread.
func (b *Builder) renderBody(msgID, body string) model.Body {
	res := b.renderer.Render(body)
	if res.Degraded {
		b.logf("degraded rendering for message %s: %v", msgID, res.Err)
	}
	return model.Body{
		Plain:    res.Plain,
		HTML:     res.HTML,
		Degraded: res.Degraded,
	}
}
