package queue

import (
	"fmt"
	"io"

	"appstore.backend/internal/config"
	"appstore.backend/internal/infrastructure/mail"
	"github.com/hibiken/asynq"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

var newClient = func(opt asynq.RedisConnOpt) *asynq.Client {
	return asynq.NewClient(opt)
}

// NewSMTPSender builds the inline SMTP transport from config
func NewSMTPSender(cfg config.MailConfig) *mail.SMTPSender {
	return mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.From)
}

// NewMailSender returns the transport named by cfg.Transport. The queue
// transport needs redis; its closer releases the asynq client.
func NewMailSender(cfg config.MailConfig, redisCfg config.RedisConfig) (mail.Sender, io.Closer, error) {
	switch cfg.Transport {
	case config.MailTransportSMTP:
		return NewSMTPSender(cfg), nopCloser{}, nil
	case config.MailTransportLog, "":
		return mail.NewLogSender(), nopCloser{}, nil
	case config.MailTransportQueue:
		if redisCfg.URL == "" {
			return nil, nil, fmt.Errorf("mail transport %q requires REDIS_URL", cfg.Transport)
		}
		opt, err := RedisOptions(redisCfg.URL, redisCfg.PASSWORD)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url for mail queue: %w", err)
		}
		client := newClient(opt)
		return NewSender(client), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}
