package repositories

import (
	"context"
	"errors"
	"time"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationCodeRepository implements one-time code storage
type VerificationCodeRepository struct {
	db *gorm.DB
}

// NewVerificationCodeRepository creates a new verification code repository
func NewVerificationCodeRepository(db *gorm.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{db: db}
}

// Replace removes the existing code for the pair, if any, and inserts code.
// Callers wanting both steps atomic run it inside a unit of work.
func (r *VerificationCodeRepository) Replace(ctx context.Context, code *entities.VerificationCode) error {
	db := GetDB(ctx, r.db).WithContext(ctx)

	if err := db.Where("account_id = ? AND purpose = ?", code.AccountID, string(code.Purpose)).
		Delete(&models.VerificationCode{}).Error; err != nil {
		return err
	}

	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	m := &models.VerificationCode{
		ID:          code.ID,
		AccountID:   code.AccountID,
		Purpose:     string(code.Purpose),
		Code:        code.Code,
		Verified:    code.Verified,
		Attempts:    code.Attempts,
		MaxAttempts: code.MaxAttempts,
		ExpiresAt:   code.ExpiresAt.UTC(),
		CreatedAt:   code.CreatedAt.UTC(),
	}
	if err := db.Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Get returns the outstanding code for the pair
func (r *VerificationCodeRepository) Get(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) (*entities.VerificationCode, error) {
	var m models.VerificationCode
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("account_id = ? AND purpose = ?", accountID, string(purpose)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toVerificationCodeEntity(&m), nil
}

// Update persists the attempt counter and verified flag
func (r *VerificationCodeRepository) Update(ctx context.Context, code *entities.VerificationCode) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.VerificationCode{}).
		Where("id = ?", code.ID).
		Updates(map[string]interface{}{
			"attempts": code.Attempts,
			"verified": code.Verified,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes the code for the pair. Missing codes are not an error.
func (r *VerificationCodeRepository) Delete(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("account_id = ? AND purpose = ?", accountID, string(purpose)).
		Delete(&models.VerificationCode{}).Error
}

// DeleteAllForAccount removes every code the account holds
func (r *VerificationCodeRepository) DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("account_id = ?", accountID).
		Delete(&models.VerificationCode{}).Error
}

// DeleteExpired removes codes whose expiry is before now and returns how many went
func (r *VerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&models.VerificationCode{})
	return result.RowsAffected, result.Error
}

func toVerificationCodeEntity(m *models.VerificationCode) *entities.VerificationCode {
	return &entities.VerificationCode{
		ID:          m.ID,
		AccountID:   m.AccountID,
		Purpose:     entities.CodePurpose(m.Purpose),
		Code:        m.Code,
		Verified:    m.Verified,
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt,
	}
}
