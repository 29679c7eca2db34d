package mail

import (
	"context"

	"appstore.backend/pkg/logger"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of sending them. Used in
// development where no relay is available.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logger.Info(ctx, "Email not sent (log transport)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
