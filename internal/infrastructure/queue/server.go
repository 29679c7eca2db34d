package queue

import (
	"appstore.backend/internal/infrastructure/mail"
	"github.com/hibiken/asynq"
)

// RedisOptions parses a redis:// URL into asynq connection options
func RedisOptions(url, password string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		if clientOpt, ok := opt.(asynq.RedisClientOpt); ok {
			clientOpt.Password = password
			return clientOpt, nil
		}
	}
	return opt, nil
}

// NewServer builds the worker server that drains the email queue with sender
func NewServer(opt asynq.RedisConnOpt, sender mail.Sender) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 5,
			LogLevel:    asynq.ErrorLevel,
			Queues: map[string]int{
				SendEmailQueueName: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(SendEmailTaskName, NewSendEmailProcessor(sender))
	return srv, mux
}
