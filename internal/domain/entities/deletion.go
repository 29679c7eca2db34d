package entities

import (
	"time"

	"github.com/google/uuid"
)

// DeletionSchedule is returned when a deletion is scheduled or queried.
type DeletionSchedule struct {
	AccountID     uuid.UUID  `json:"accountId"`
	Pending       bool       `json:"pending"`
	RequestedAt   *time.Time `json:"requestedAt,omitempty"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	Notified      bool       `json:"notified"`
	DeliveryError string     `json:"deliveryError,omitempty"`
}

// DeletionCancelled is returned when a pending deletion is cancelled.
type DeletionCancelled struct {
	AccountID     uuid.UUID `json:"accountId"`
	Notified      bool      `json:"notified"`
	DeliveryError string    `json:"deliveryError,omitempty"`
}

// SweepOutcome describes what happened to one candidate during a sweep.
type SweepOutcome string

const (
	SweepOutcomeWouldDelete SweepOutcome = "would_delete"
	SweepOutcomeDeleted     SweepOutcome = "deleted"
	SweepOutcomeSkipped     SweepOutcome = "skipped"
	SweepOutcomeFailed      SweepOutcome = "failed"
)

// SweptAccount is one line of a sweep report.
type SweptAccount struct {
	AccountID   uuid.UUID    `json:"accountId"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	ScheduledAt time.Time    `json:"scheduledAt"`
	Outcome     SweepOutcome `json:"outcome"`
	Notified    bool         `json:"notified"`
	Error       string       `json:"error,omitempty"`
}

// DeletionCursor marks a position in the due-for-deletion ordering
// (scheduled time, then account id). The zero value starts from the beginning.
type DeletionCursor struct {
	ScheduledAt time.Time
	AccountID   uuid.UUID
}

func (c DeletionCursor) IsZero() bool {
	return c.ScheduledAt.IsZero() && c.AccountID == uuid.Nil
}

// SweepReport summarizes a sweep run.
type SweepReport struct {
	Now      time.Time      `json:"now"`
	DryRun   bool           `json:"dryRun"`
	Accounts []SweptAccount `json:"accounts"`
	Deleted  int            `json:"deleted"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
}

// PasswordResetInput is the body of the reset confirmation endpoint.
type PasswordResetInput struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}
