package repositories

import (
	"context"
	"time"

	"appstore.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// AccountRepository defines account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)
	GetByUsername(ctx context.Context, username string) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	// GetByLogin matches either the username or the email address.
	GetByLogin(ctx context.Context, login string) (*entities.Account, error)
	Activate(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// SetDeletionSchedule sets the pending flag and both timestamps in one write.
	SetDeletionSchedule(ctx context.Context, id uuid.UUID, requestedAt, scheduledAt time.Time) error
	// ClearDeletionSchedule clears the pending flag and both timestamps in one write.
	ClearDeletionSchedule(ctx context.Context, id uuid.UUID) error
	// ListDueForDeletion pages through due accounts in (scheduled time, id)
	// order, starting strictly after the cursor.
	ListDueForDeletion(ctx context.Context, now time.Time, after entities.DeletionCursor, limit int) ([]*entities.Account, error)
	// Delete removes the account and every row it owns.
	Delete(ctx context.Context, id uuid.UUID) error
}
