package usecases

import (
	"context"
	"errors"
	"strings"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/domain/repositories"
	"appstore.backend/pkg/logger"
	"go.uber.org/zap"
)

// PasswordResetUsecase resets forgotten passwords through an emailed code
type PasswordResetUsecase struct {
	accountRepo repositories.AccountRepository
	uow         repositories.UnitOfWork
	codes       *VerificationCodeUsecase
	notifier    Notifier
	metrics     MetricsRecorder
}

// NewPasswordResetUsecase creates a new PasswordResetUsecase
func NewPasswordResetUsecase(
	accountRepo repositories.AccountRepository,
	uow repositories.UnitOfWork,
	codes *VerificationCodeUsecase,
	notifier Notifier,
) *PasswordResetUsecase {
	return &PasswordResetUsecase{
		accountRepo: accountRepo,
		uow:         uow,
		codes:       codes,
		notifier:    notifier,
		metrics:     noopMetrics{},
	}
}

func (u *PasswordResetUsecase) SetMetrics(metrics MetricsRecorder) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	u.metrics = metrics
}

// RequestReset emails a reset code. Unknown and inactive addresses return a
// nil result without error.
func (u *PasswordResetUsecase) RequestReset(ctx context.Context, email string) (*entities.CodeIssued, error) {
	account, err := u.lookup(ctx, email)
	if err != nil || account == nil {
		return nil, err
	}
	return u.codes.RequestCode(ctx, account, entities.CodePurposePasswordReset)
}

func (u *PasswordResetUsecase) VerifyResetCode(ctx context.Context, email string, input entities.VerifyCodeInput) (*entities.VerificationResult, error) {
	account, err := u.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domainerrors.ErrCodeNotFound
	}
	return u.codes.VerifyCode(ctx, account.ID, entities.CodePurposePasswordReset, input)
}

// ResetPassword stores the new password once the reset code has been verified
func (u *PasswordResetUsecase) ResetPassword(ctx context.Context, input *entities.PasswordResetInput) error {
	if err := ValidatePassword(input.Password, input.PasswordConfirm); err != nil {
		return err
	}

	account, err := u.lookup(ctx, input.Email)
	if err != nil {
		return err
	}
	if account == nil {
		return domainerrors.ErrNotVerified
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.codes.ConsumeVerified(txCtx, account.ID, entities.CodePurposePasswordReset); err != nil {
			return err
		}
		return u.accountRepo.UpdatePassword(txCtx, account.ID, passwordHash)
	})
	if errors.Is(err, domainerrors.ErrCodeExpired) {
		u.codes.discardExpired(ctx, account.ID, entities.CodePurposePasswordReset)
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "Password reset", zap.String("accountId", account.ID.String()))

	if err := u.notifier.SendPasswordChanged(ctx, account); err != nil {
		u.metrics.RecordDeliveryFailure("password_changed")
		logger.Warn(ctx, "Failed to send password changed notice",
			zap.String("accountId", account.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (u *PasswordResetUsecase) lookup(ctx context.Context, email string) (*entities.Account, error) {
	account, err := u.accountRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, nil
	}
	return account, nil
}
