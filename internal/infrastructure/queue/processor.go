package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"appstore.backend/internal/infrastructure/mail"
	"github.com/hibiken/asynq"
)

type sendEmailProcessor struct {
	sender mail.Sender
}

// NewSendEmailProcessor delivers queued messages with sender
func NewSendEmailProcessor(sender mail.Sender) asynq.Handler {
	return &sendEmailProcessor{sender: sender}
}

func (p *sendEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var msg mail.Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		return fmt.Errorf("process send email task json unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid queued email: %v: %w", err, asynq.SkipRetry)
	}

	if err := p.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}
	return nil
}
