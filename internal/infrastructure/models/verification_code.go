package models

import (
	"time"

	"github.com/google/uuid"
)

type VerificationCode struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_verification_codes_account_purpose,priority:1"`
	Purpose     string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_verification_codes_account_purpose,priority:2"`
	Code        string    `gorm:"type:varchar(16);not null"`
	Verified    bool      `gorm:"not null"`
	Attempts    int       `gorm:"not null"`
	MaxAttempts int       `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt   time.Time
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}
