package entities

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose scopes a verification code to one flow.
type CodePurpose string

const (
	CodePurposeAccountDeletion   CodePurpose = "account_deletion"
	CodePurposePasswordReset     CodePurpose = "password_reset"
	CodePurposeEmailVerification CodePurpose = "email_verification"
)

// Valid reports whether p is a known purpose.
func (p CodePurpose) Valid() bool {
	switch p {
	case CodePurposeAccountDeletion, CodePurposePasswordReset, CodePurposeEmailVerification:
		return true
	}
	return false
}

// VerificationCode is the single outstanding one-time code for an
// (account, purpose) pair.
type VerificationCode struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"accountId"`
	Purpose     CodePurpose `json:"purpose"`
	Code        string      `json:"-"`
	Verified    bool        `json:"verified"`
	Attempts    int         `json:"attempts"`
	MaxAttempts int         `json:"maxAttempts"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// IsExpired is true once now is strictly past ExpiresAt.
func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *VerificationCode) IsLocked() bool {
	return c.Attempts >= c.MaxAttempts
}

// Remaining returns how many incorrect submissions are still allowed.
func (c *VerificationCode) Remaining() int {
	if r := c.MaxAttempts - c.Attempts; r > 0 {
		return r
	}
	return 0
}

// CodeIssued describes a freshly issued code. The code itself never leaves
// the service except through the email.
type CodeIssued struct {
	ChallengeID   uuid.UUID   `json:"challengeId"`
	AccountID     uuid.UUID   `json:"accountId"`
	Purpose       CodePurpose `json:"purpose"`
	ExpiresAt     time.Time   `json:"expiresAt"`
	Delivered     bool        `json:"delivered"`
	DeliveryError string      `json:"deliveryError,omitempty"`
}

// VerificationStatus is the outcome of a successful verification.
type VerificationStatus string

const (
	VerificationStatusVerified VerificationStatus = "verified"
)

// VerificationResult is returned when a submitted code matches.
type VerificationResult struct {
	AccountID       uuid.UUID          `json:"accountId"`
	Purpose         CodePurpose        `json:"purpose"`
	Status          VerificationStatus `json:"status"`
	AlreadyVerified bool               `json:"alreadyVerified,omitempty"`
}

// VerifyCodeInput is the body of every code submission endpoint. ChallengeID
// is optional; when set it must name the outstanding code, so a code that has
// since been replaced is reported as not found.
type VerifyCodeInput struct {
	ChallengeID uuid.UUID `json:"challengeId"`
	Code        string    `json:"code" binding:"required"`
}
