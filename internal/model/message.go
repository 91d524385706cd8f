package model

import "time"

// Address is a display name plus email address pair.
type Address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Body is the dual-representation payload of a message. HTML is empty
// when rendering degraded to plain text only.
type Body struct {
	Plain    string `json:"plain"`
	HTML     string `json:"html,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Message is one synthesized email-shaped message. It is immutable once
// constructed. Identifier fields hold the id without angle brackets.
type Message struct {
	Subject    string    `json:"subject"`
	From       Address   `json:"from"`
	To         Address   `json:"to"`
	Date       time.Time `json:"date"`
	MessageID  string    `json:"message_id"`
	InReplyTo  string    `json:"in_reply_to,omitempty"`
	References string    `json:"references,omitempty"`
	Body       Body      `json:"body"`
}

// IsReply reports whether the message carries reply linkage.
func (m *Message) IsReply() bool {
	return m.InReplyTo != ""
}

// Thread is an ordered sequence of messages sharing one root identifier.
// The first message is the root; every other message replies to it.
type Thread struct {
	Messages []Message `json:"messages"`
}

// Root returns the thread's root message, or nil for an empty thread.
func (t *Thread) Root() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[0]
}
