package queue

import (
	"context"
	"fmt"

	"appstore.backend/internal/infrastructure/mail"
	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the sender needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Sender hands messages to the queue instead of delivering them inline.
// A nil error means the message was accepted by the queue.
type Sender struct {
	client Enqueuer
}

func NewSender(client Enqueuer) *Sender {
	return &Sender{client: client}
}

func (s *Sender) Send(ctx context.Context, msg mail.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	task, err := NewSendEmailTask(msg)
	if err != nil {
		return err
	}

	if _, err := s.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue email to %s: %w", msg.To, err)
	}
	return nil
}
