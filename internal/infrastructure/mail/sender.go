package mail

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmptyRecipient = errors.New("mail: empty recipient")
	ErrEmptySubject   = errors.New("mail: empty subject")
	ErrEmptyBody      = errors.New("mail: empty body")
)

// Message is one outgoing email with an HTML body.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate checks the message is deliverable.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrEmptyRecipient
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return err
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(m.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// Sender delivers a message. Implementations may deliver synchronously or hand
// the message to a queue.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
