package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/domain/repositories"
	"appstore.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountDeletionUsecase moves accounts into and out of the pending deletion
// state. It never deletes accounts; the sweep does that once the grace period
// has elapsed.
type AccountDeletionUsecase struct {
	accountRepo repositories.AccountRepository
	uow         repositories.UnitOfWork
	codes       *VerificationCodeUsecase
	notifier    Notifier
	gracePeriod time.Duration
	metrics     MetricsRecorder
	now         Clock
}

// NewAccountDeletionUsecase creates a new AccountDeletionUsecase
func NewAccountDeletionUsecase(
	accountRepo repositories.AccountRepository,
	uow repositories.UnitOfWork,
	codes *VerificationCodeUsecase,
	notifier Notifier,
	gracePeriod time.Duration,
) *AccountDeletionUsecase {
	return &AccountDeletionUsecase{
		accountRepo: accountRepo,
		uow:         uow,
		codes:       codes,
		notifier:    notifier,
		gracePeriod: gracePeriod,
		metrics:     noopMetrics{},
		now:         systemClock,
	}
}

func (u *AccountDeletionUsecase) SetClock(now Clock) {
	u.now = now
}

func (u *AccountDeletionUsecase) SetMetrics(metrics MetricsRecorder) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	u.metrics = metrics
}

// RequestDeletion emails a deletion confirmation code
func (u *AccountDeletionUsecase) RequestDeletion(ctx context.Context, accountID uuid.UUID) (*entities.CodeIssued, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.PendingDeletion {
		return nil, domainerrors.ErrDeletionPending
	}
	return u.codes.RequestCode(ctx, account, entities.CodePurposeAccountDeletion)
}

func (u *AccountDeletionUsecase) VerifyDeletionCode(ctx context.Context, accountID uuid.UUID, input entities.VerifyCodeInput) (*entities.VerificationResult, error) {
	return u.codes.VerifyCode(ctx, accountID, entities.CodePurposeAccountDeletion, input)
}

// AbandonRequest discards an outstanding deletion code
func (u *AccountDeletionUsecase) AbandonRequest(ctx context.Context, accountID uuid.UUID) error {
	return u.codes.Cancel(ctx, accountID, entities.CodePurposeAccountDeletion)
}

// Schedule marks the account for deletion after the grace period. It requires
// a verified deletion code, which it consumes in the same transaction.
func (u *AccountDeletionUsecase) Schedule(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error) {
	var (
		account     *entities.Account
		requestedAt time.Time
		scheduledAt time.Time
	)

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		account, err = u.accountRepo.GetByID(u.uow.WithLock(txCtx), accountID)
		if err != nil {
			return err
		}
		if account.PendingDeletion {
			return domainerrors.ErrDeletionPending
		}
		if err := u.codes.ConsumeVerified(txCtx, accountID, entities.CodePurposeAccountDeletion); err != nil {
			return err
		}

		requestedAt = u.now()
		scheduledAt = requestedAt.Add(u.gracePeriod)
		return u.accountRepo.SetDeletionSchedule(txCtx, accountID, requestedAt, scheduledAt)
	})
	if errors.Is(err, domainerrors.ErrCodeExpired) {
		u.codes.discardExpired(ctx, accountID, entities.CodePurposeAccountDeletion)
	}
	if err != nil {
		return nil, err
	}
	u.metrics.RecordDeletionScheduled()

	logger.Info(ctx, "Account deletion scheduled",
		zap.String("accountId", accountID.String()),
		zap.Time("scheduledAt", scheduledAt),
	)

	schedule := &entities.DeletionSchedule{
		AccountID:   accountID,
		Pending:     true,
		RequestedAt: &requestedAt,
		ScheduledAt: &scheduledAt,
		Notified:    true,
	}
	if err := u.notifier.SendDeletionScheduled(ctx, account, scheduledAt); err != nil {
		schedule.Notified = false
		schedule.DeliveryError = err.Error()
		u.deliveryFailed(ctx, "deletion_scheduled", accountID, err)
	}
	return schedule, nil
}

// Cancel takes the account out of the pending state and discards any
// outstanding deletion code.
func (u *AccountDeletionUsecase) Cancel(ctx context.Context, accountID uuid.UUID) (*entities.DeletionCancelled, error) {
	var account *entities.Account

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		account, err = u.accountRepo.GetByID(u.uow.WithLock(txCtx), accountID)
		if err != nil {
			return err
		}
		if !account.PendingDeletion {
			return domainerrors.ErrNotPending
		}
		if err := u.accountRepo.ClearDeletionSchedule(txCtx, accountID); err != nil {
			return err
		}
		return u.codes.Cancel(txCtx, accountID, entities.CodePurposeAccountDeletion)
	})
	if err != nil {
		return nil, err
	}
	u.metrics.RecordDeletionCancelled()

	logger.Info(ctx, "Account deletion cancelled", zap.String("accountId", accountID.String()))

	cancelled := &entities.DeletionCancelled{AccountID: accountID, Notified: true}
	if err := u.notifier.SendDeletionCancelled(ctx, account); err != nil {
		cancelled.Notified = false
		cancelled.DeliveryError = err.Error()
		u.deliveryFailed(ctx, "deletion_cancelled", accountID, err)
	}
	return cancelled, nil
}

// Status reports whether the account is pending deletion and when
func (u *AccountDeletionUsecase) Status(ctx context.Context, accountID uuid.UUID) (*entities.DeletionSchedule, error) {
	account, err := u.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &entities.DeletionSchedule{
		AccountID:   account.ID,
		Pending:     account.PendingDeletion,
		RequestedAt: account.DeletionRequestedAt.Ptr(),
		ScheduledAt: account.DeletionScheduledAt.Ptr(),
	}, nil
}

func (u *AccountDeletionUsecase) deliveryFailed(ctx context.Context, kind string, accountID uuid.UUID, err error) {
	u.metrics.RecordDeliveryFailure(kind)
	logger.Warn(ctx, fmt.Sprintf("Failed to send %s notice", kind),
		zap.String("accountId", accountID.String()),
		zap.Error(err),
	)
}
