package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Username            string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email               string     `gorm:"type:varchar(254);uniqueIndex;not null"`
	PasswordHash        string     `gorm:"type:varchar(255);not null"`
	IsActive            bool       `gorm:"not null"`
	PendingDeletion     bool       `gorm:"not null;index:idx_accounts_pending_deletion,priority:1"`
	DeletionRequestedAt *time.Time `gorm:"type:timestamptz"`
	DeletionScheduledAt *time.Time `gorm:"type:timestamptz;index:idx_accounts_pending_deletion,priority:2"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (Account) TableName() string {
	return "accounts"
}
