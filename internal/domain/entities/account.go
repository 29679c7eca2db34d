package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Account represents a registered app store account.
//
// IsActive means the email address has been confirmed and the account is
// usable. PendingDeletion is tracked independently: an account awaiting
// deletion stays active and can log in until the sweep removes it.
type Account struct {
	ID                  uuid.UUID `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	IsActive            bool      `json:"isActive"`
	PendingDeletion     bool      `json:"pendingDeletion"`
	DeletionRequestedAt null.Time `json:"deletionRequestedAt"`
	DeletionScheduledAt null.Time `json:"deletionScheduledAt"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DueForDeletion reports whether the account is pending and its scheduled
// time is at or before now.
func (a *Account) DueForDeletion(now time.Time) bool {
	return a.PendingDeletion && a.DeletionScheduledAt.Valid && !a.DeletionScheduledAt.Time.After(now)
}

// SignupInput represents input for creating an account
type SignupInput struct {
	Username        string `json:"username" validate:"required,min=3,max=150,username"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=128,notnumeric"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// LoginInput accepts either a username or an email in Login.
type LoginInput struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	Account      *Account `json:"account"`
}

// SignupResult is returned after an account is created.
type SignupResult struct {
	Account    *Account    `json:"account"`
	Activation *CodeIssued `json:"activation"`
}
