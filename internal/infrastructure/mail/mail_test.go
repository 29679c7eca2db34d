package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"appstore.backend/internal/domain/entities"
	"github.com/go-gomail/gomail"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testAccount() *entities.Account {
	return &entities.Account{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestMessage_Validate(t *testing.T) {
	assert.NoError(t, Message{To: "a@example.com", Subject: "s", Body: "b"}.Validate())
	assert.ErrorIs(t, Message{Subject: "s", Body: "b"}.Validate(), ErrEmptyRecipient)
	assert.Error(t, Message{To: "not an address", Subject: "s", Body: "b"}.Validate())
	assert.ErrorIs(t, Message{To: "a@example.com", Body: "b"}.Validate(), ErrEmptySubject)
	assert.ErrorIs(t, Message{To: "a@example.com", Subject: "s"}.Validate(), ErrEmptyBody)
}

func TestAccountMailer_VerificationCodePerPurpose(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewAccountMailer(sender, "[JN App Store] ", "JN App Store")
	require.NoError(t, err)

	acc := testAccount()
	expires := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	for _, purpose := range []entities.CodePurpose{
		entities.CodePurposeAccountDeletion,
		entities.CodePurposePasswordReset,
		entities.CodePurposeEmailVerification,
	} {
		err := m.SendVerificationCode(context.Background(), acc, &entities.VerificationCode{
			Purpose:     purpose,
			Code:        "042917",
			ExpiresAt:   expires,
			MaxAttempts: 5,
		})
		require.NoError(t, err)
	}

	require.Len(t, sender.sent, 3)
	assert.Equal(t, "[JN App Store] Confirm account deletion", sender.sent[0].Subject)
	assert.Equal(t, "[JN App Store] Password reset code", sender.sent[1].Subject)
	assert.Equal(t, "[JN App Store] Confirm your email address", sender.sent[2].Subject)
	for _, msg := range sender.sent {
		assert.Equal(t, "alice@example.com", msg.To)
		assert.Contains(t, msg.Body, "042917")
		assert.Contains(t, msg.Body, "Hello alice")
		assert.Contains(t, msg.Body, "May 1, 2026 09:30 UTC")
	}

	err = m.SendVerificationCode(context.Background(), acc, &entities.VerificationCode{Purpose: "unknown"})
	assert.Error(t, err)
}

func TestAccountMailer_LifecycleNotices(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewAccountMailer(sender, "", "JN App Store")
	require.NoError(t, err)

	acc := testAccount()
	acc.DeletionRequestedAt = null.TimeFrom(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, m.SendDeletionScheduled(ctx, acc, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, m.SendDeletionCancelled(ctx, acc))
	require.NoError(t, m.SendAccountDeleted(ctx, acc))
	require.NoError(t, m.SendPasswordChanged(ctx, acc))

	require.Len(t, sender.sent, 4)
	assert.Contains(t, sender.sent[0].Body, "May 4, 2026 00:00 UTC")
	assert.Contains(t, sender.sent[1].Body, "cancelled")
	assert.Contains(t, sender.sent[2].Body, "May 1, 2026")
	assert.Equal(t, "Your password was changed", sender.sent[3].Subject)
}

func TestAccountMailer_EscapesUserInput(t *testing.T) {
	sender := &recordingSender{}
	m, err := NewAccountMailer(sender, "", "JN App Store")
	require.NoError(t, err)

	acc := testAccount()
	acc.Username = "<script>x</script>"
	require.NoError(t, m.SendDeletionCancelled(context.Background(), acc))
	assert.False(t, strings.Contains(sender.sent[0].Body, "<script>"))
}

func TestAccountMailer_SenderError(t *testing.T) {
	m, err := NewAccountMailer(&recordingSender{err: errors.New("relay down")}, "", "JN App Store")
	require.NoError(t, err)
	assert.EqualError(t, m.SendDeletionCancelled(context.Background(), testAccount()), "relay down")
}

func TestSMTPSender_Send(t *testing.T) {
	orig := dialAndSend
	t.Cleanup(func() { dialAndSend = orig })

	var got *gomail.Message
	dialAndSend = func(_ *gomail.Dialer, m *gomail.Message) error {
		got = m
		return nil
	}

	s := NewSMTPSender("localhost", 1025, "", "", "no-reply@example.com")
	msg := Message{To: "bob@example.com", Subject: "Hi", Body: "<p>hi</p>"}
	require.NoError(t, s.Send(context.Background(), msg))
	require.NotNil(t, got)
	assert.Equal(t, []string{"bob@example.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{"Hi"}, got.GetHeader("Subject"))

	dialAndSend = func(*gomail.Dialer, *gomail.Message) error { return errors.New("refused") }
	err := s.Send(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bob@example.com")

	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrEmptyRecipient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, msg), context.Canceled)
}

func TestLogSender_Send(t *testing.T) {
	s := NewLogSender()
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "s", Body: "b"}))
	assert.Error(t, s.Send(context.Background(), Message{}))
}
