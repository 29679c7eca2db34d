package repositories

import (
	"context"
	"time"

	"appstore.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// VerificationCodeRepository defines one-time code data operations.
// At most one code exists per (account, purpose).
type VerificationCodeRepository interface {
	// Replace deletes any existing code for the same account and purpose and stores code.
	Replace(ctx context.Context, code *entities.VerificationCode) error
	Get(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) (*entities.VerificationCode, error)
	Update(ctx context.Context, code *entities.VerificationCode) error
	Delete(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) error
	DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
