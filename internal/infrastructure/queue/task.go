package queue

import (
	"encoding/json"
	"fmt"

	"appstore.backend/internal/infrastructure/mail"
	"github.com/hibiken/asynq"
)

const (
	SendEmailTaskName  = "email:send"
	SendEmailQueueName = "email"

	sendEmailMaxRetry = 5
)

// NewSendEmailTask wraps msg into an asynq task
func NewSendEmailTask(msg mail.Message) (*asynq.Task, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendEmailTaskName,
		payload,
		asynq.MaxRetry(sendEmailMaxRetry),
		asynq.Queue(SendEmailQueueName),
	), nil
}
