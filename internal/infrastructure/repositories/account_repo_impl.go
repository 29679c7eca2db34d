package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// AccountRepository implements account data operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.Account{
		ID:              account.ID,
		Username:        account.Username,
		Email:           account.Email,
		PasswordHash:    account.PasswordHash,
		IsActive:        account.IsActive,
		PendingDeletion: account.PendingDeletion,
		CreatedAt:       account.CreatedAt.UTC(),
		UpdatedAt:       account.UpdatedAt.UTC(),
	}
	if account.DeletionRequestedAt.Valid {
		t := account.DeletionRequestedAt.Time.UTC()
		m.DeletionRequestedAt = &t
	}
	if account.DeletionScheduledAt.Valid {
		t := account.DeletionScheduledAt.Time.UTC()
		m.DeletionScheduledAt = &t
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername gets an account by exact username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByEmail gets an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return r.first(ctx, "email = ?", strings.ToLower(email))
}

// GetByLogin gets an account by username or email
func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*entities.Account, error) {
	return r.first(ctx, "username = ? OR email = ?", login, strings.ToLower(login))
}

func (r *AccountRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.Account, error) {
	var m models.Account
	if err := GetDB(ctx, r.db).WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// Activate marks the account email as confirmed
func (r *AccountRepository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.updates(ctx, id, map[string]interface{}{
		"is_active": true,
	})
}

// UpdatePassword stores a new password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updates(ctx, id, map[string]interface{}{
		"password_hash": passwordHash,
	})
}

// SetDeletionSchedule marks the account pending deletion
func (r *AccountRepository) SetDeletionSchedule(ctx context.Context, id uuid.UUID, requestedAt, scheduledAt time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{
		"pending_deletion":      true,
		"deletion_requested_at": requestedAt.UTC(),
		"deletion_scheduled_at": scheduledAt.UTC(),
	})
}

// ClearDeletionSchedule reverts the account to not pending
func (r *AccountRepository) ClearDeletionSchedule(ctx context.Context, id uuid.UUID) error {
	return r.updates(ctx, id, map[string]interface{}{
		"pending_deletion":      false,
		"deletion_requested_at": nil,
		"deletion_scheduled_at": nil,
	})
}

func (r *AccountRepository) updates(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Account{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListDueForDeletion lists pending accounts whose scheduled time is at or before now,
// oldest schedule first, resuming after the given cursor.
func (r *AccountRepository) ListDueForDeletion(ctx context.Context, now time.Time, after entities.DeletionCursor, limit int) ([]*entities.Account, error) {
	var rows []models.Account
	query := GetDB(ctx, r.db).WithContext(ctx).
		Where("pending_deletion = ? AND deletion_scheduled_at IS NOT NULL AND deletion_scheduled_at <= ?", true, now.UTC())
	if !after.IsZero() {
		at := after.ScheduledAt.UTC()
		query = query.Where("(deletion_scheduled_at > ? OR (deletion_scheduled_at = ? AND id > ?))", at, at, after.AccountID)
	}
	query = query.Order("deletion_scheduled_at ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]*entities.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, toAccountEntity(&rows[i]))
	}
	return accounts, nil
}

// Delete hard deletes the account together with its verification codes
func (r *AccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db).WithContext(ctx)

	if err := db.Where("account_id = ?", id).Delete(&models.VerificationCode{}).Error; err != nil {
		return err
	}

	result := db.Delete(&models.Account{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toAccountEntity(m *models.Account) *entities.Account {
	return &entities.Account{
		ID:                  m.ID,
		Username:            m.Username,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		IsActive:            m.IsActive,
		PendingDeletion:     m.PendingDeletion,
		DeletionRequestedAt: null.TimeFromPtr(m.DeletionRequestedAt),
		DeletionScheduledAt: null.TimeFromPtr(m.DeletionScheduledAt),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
