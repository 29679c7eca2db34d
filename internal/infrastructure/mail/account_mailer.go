package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"appstore.backend/internal/domain/entities"
)

//go:embed templates/*.html
var templatesFS embed.FS

const timeLayout = "Jan 2, 2006 15:04 MST"

type codeCopy struct {
	subject string
	intro   string
}

var codeCopies = map[entities.CodePurpose]codeCopy{
	entities.CodePurposeAccountDeletion: {
		subject: "Confirm account deletion",
		intro:   "You asked to delete your account. Enter this code to confirm the request:",
	},
	entities.CodePurposePasswordReset: {
		subject: "Password reset code",
		intro:   "Use this code to reset your password:",
	},
	entities.CodePurposeEmailVerification: {
		subject: "Confirm your email address",
		intro:   "Welcome! Enter this code to confirm your email address and activate your account:",
	},
}

// AccountMailer renders account lifecycle notifications and hands them to a Sender.
type AccountMailer struct {
	sender        Sender
	templates     *template.Template
	subjectPrefix string
	siteName      string
}

// NewAccountMailer parses the embedded templates. It fails only if they are malformed.
func NewAccountMailer(sender Sender, subjectPrefix, siteName string) (*AccountMailer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &AccountMailer{
		sender:        sender,
		templates:     tmpl,
		subjectPrefix: subjectPrefix,
		siteName:      siteName,
	}, nil
}

// SendVerificationCode emails a one-time code for its purpose
func (m *AccountMailer) SendVerificationCode(ctx context.Context, account *entities.Account, code *entities.VerificationCode) error {
	text, ok := codeCopies[code.Purpose]
	if !ok {
		return fmt.Errorf("no mail copy for purpose %q", code.Purpose)
	}
	return m.send(ctx, account, text.subject, "verification_code", map[string]interface{}{
		"Intro":       text.intro,
		"Code":        code.Code,
		"ExpiresAt":   code.ExpiresAt.UTC().Format(timeLayout),
		"MaxAttempts": code.MaxAttempts,
	})
}

// SendDeletionScheduled confirms a scheduled deletion and its date
func (m *AccountMailer) SendDeletionScheduled(ctx context.Context, account *entities.Account, scheduledAt time.Time) error {
	return m.send(ctx, account, "Account deletion scheduled", "deletion_scheduled", map[string]interface{}{
		"ScheduledAt": scheduledAt.UTC().Format(timeLayout),
	})
}

func (m *AccountMailer) SendDeletionCancelled(ctx context.Context, account *entities.Account) error {
	return m.send(ctx, account, "Account deletion cancelled", "deletion_cancelled", nil)
}

func (m *AccountMailer) SendAccountDeleted(ctx context.Context, account *entities.Account) error {
	requested := "your request"
	if account.DeletionRequestedAt.Valid {
		requested = account.DeletionRequestedAt.Time.UTC().Format(timeLayout)
	}
	return m.send(ctx, account, "Your account has been deleted", "account_deleted", map[string]interface{}{
		"RequestedAt": requested,
	})
}

func (m *AccountMailer) SendPasswordChanged(ctx context.Context, account *entities.Account) error {
	return m.send(ctx, account, "Your password was changed", "password_changed", nil)
}

func (m *AccountMailer) send(ctx context.Context, account *entities.Account, subject, name string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Username"] = account.Username
	data["SiteName"] = m.siteName

	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	return m.sender.Send(ctx, Message{
		To:      account.Email,
		Subject: m.subjectPrefix + subject,
		Body:    body.String(),
	})
}
