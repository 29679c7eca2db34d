package repositories

import (
	"context"
	"testing"
	"time"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc := newAccount("alice")
	acc.IsActive = false
	require.NoError(t, repo.Create(ctx, acc))

	byID, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, acc.Email, byID.Email)
	require.False(t, byID.IsActive)
	require.False(t, byID.DeletionScheduledAt.Valid)

	byEmail, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, acc.ID, byEmail.ID)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, acc.ID, byUsername.ID)

	byLogin, err := repo.GetByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, acc.ID, byLogin.ID)
	byLogin, err = repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, acc.ID, byLogin.ID)

	require.NoError(t, repo.Activate(ctx, acc.ID))
	require.NoError(t, repo.UpdatePassword(ctx, acc.ID, "hash2"))

	got, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, got.IsActive)
	require.Equal(t, "hash2", got.PasswordHash)

	require.NoError(t, repo.Delete(ctx, acc.ID))
	_, err = repo.GetByID(ctx, acc.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAccountRepository_DuplicateUsernameOrEmail(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newAccount("alice")))

	dup := newAccount("alice")
	require.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)

	dupEmail := newAccount("alice2")
	dupEmail.Email = "alice@example.com"
	require.ErrorIs(t, repo.Create(ctx, dupEmail), domainerrors.ErrAlreadyExists)
}

func TestAccountRepository_DeletionSchedule(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	acc := newAccount("bob")
	require.NoError(t, repo.Create(ctx, acc))

	requested := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	scheduled := requested.Add(72 * time.Hour)
	require.NoError(t, repo.SetDeletionSchedule(ctx, acc.ID, requested, scheduled))

	got, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.True(t, got.PendingDeletion)
	require.True(t, got.DeletionRequestedAt.Time.Equal(requested))
	require.True(t, got.DeletionScheduledAt.Time.Equal(scheduled))

	require.NoError(t, repo.ClearDeletionSchedule(ctx, acc.ID))
	got, err = repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.False(t, got.PendingDeletion)
	require.False(t, got.DeletionRequestedAt.Valid)
	require.False(t, got.DeletionScheduledAt.Valid)
}

func TestAccountRepository_ListDueForDeletion(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	schedule := func(name string, at time.Time) *entities.Account {
		acc := newAccount(name)
		require.NoError(t, repo.Create(ctx, acc))
		require.NoError(t, repo.SetDeletionSchedule(ctx, acc.ID, at.Add(-72*time.Hour), at))
		return acc
	}

	exact := schedule("exact", now)
	older := schedule("older", now.Add(-time.Hour))
	schedule("later", now.Add(time.Second))
	require.NoError(t, repo.Create(ctx, newAccount("idle")))

	due, err := repo.ListDueForDeletion(ctx, now, entities.DeletionCursor{}, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	require.Equal(t, older.ID, due[0].ID)
	require.Equal(t, exact.ID, due[1].ID)

	limited, err := repo.ListDueForDeletion(ctx, now, entities.DeletionCursor{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	// A non-UTC clock must select the same instant.
	local := now.In(time.FixedZone("UTC+9", 9*3600))
	due, err = repo.ListDueForDeletion(ctx, local, entities.DeletionCursor{}, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
}

func TestAccountRepository_ListDueForDeletionAfterCursor(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	at := now.Add(-time.Hour)

	for _, name := range []string{"ana", "ben", "cal"} {
		acc := newAccount(name)
		require.NoError(t, repo.Create(ctx, acc))
		require.NoError(t, repo.SetDeletionSchedule(ctx, acc.ID, at.Add(-72*time.Hour), at))
	}

	first, err := repo.ListDueForDeletion(ctx, now, entities.DeletionCursor{}, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	last := first[1]
	rest, err := repo.ListDueForDeletion(ctx, now, entities.DeletionCursor{
		ScheduledAt: last.DeletionScheduledAt.Time,
		AccountID:   last.ID,
	}, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	seen := map[uuid.UUID]bool{first[0].ID: true, first[1].ID: true}
	require.False(t, seen[rest[0].ID])
}

func TestAccountRepository_DeleteRemovesCodes(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	codes := NewVerificationCodeRepository(db)
	ctx := context.Background()

	acc := newAccount("carol")
	require.NoError(t, repo.Create(ctx, acc))
	require.NoError(t, codes.Replace(ctx, newCode(acc.ID, entities.CodePurposeAccountDeletion, "123456")))
	require.NoError(t, codes.Replace(ctx, newCode(acc.ID, entities.CodePurposePasswordReset, "654321")))

	require.NoError(t, repo.Delete(ctx, acc.ID))

	var count int64
	require.NoError(t, db.Table("verification_codes").Where("account_id = ?", acc.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestAccountRepository_NotFoundBranches(t *testing.T) {
	db := newTestDB(t)
	createAccountTables(t, db)
	repo := NewAccountRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetByID(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByLogin(ctx, "missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.ErrorIs(t, repo.Activate(ctx, id), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.UpdatePassword(ctx, id, "hash"), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.SetDeletionSchedule(ctx, id, time.Now(), time.Now()), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.ClearDeletionSchedule(ctx, id), domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, id), domainerrors.ErrNotFound)
}
