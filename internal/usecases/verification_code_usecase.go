package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appstore.backend/internal/domain/entities"
	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/domain/repositories"
	"appstore.backend/pkg/crypto"
	"appstore.backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Verification outcomes recorded in metrics
const (
	outcomeVerified  = "verified"
	outcomeIncorrect = "incorrect"
	outcomeLocked    = "locked"
	outcomeExpired   = "expired"
	outcomeNotFound  = "not_found"
)

var generateCode = crypto.GenerateNumericCode

// CodePolicy controls how codes are generated and how long they live.
type CodePolicy struct {
	Length      int
	MaxAttempts int
	TTL         time.Duration
	// ActivationTTL is the window for email verification codes, which are
	// usually opened later than codes the user asked for interactively.
	ActivationTTL time.Duration
}

func (p CodePolicy) window(purpose entities.CodePurpose) time.Duration {
	if purpose == entities.CodePurposeEmailVerification && p.ActivationTTL > 0 {
		return p.ActivationTTL
	}
	return p.TTL
}

// VerificationCodeUsecase issues and verifies one-time codes. There is at
// most one outstanding code per account and purpose.
type VerificationCodeUsecase struct {
	codeRepo repositories.VerificationCodeRepository
	uow      repositories.UnitOfWork
	notifier Notifier
	policy   CodePolicy
	throttle CodeThrottle
	metrics  MetricsRecorder
	now      Clock
}

// NewVerificationCodeUsecase creates a new VerificationCodeUsecase
func NewVerificationCodeUsecase(
	codeRepo repositories.VerificationCodeRepository,
	uow repositories.UnitOfWork,
	notifier Notifier,
	policy CodePolicy,
) *VerificationCodeUsecase {
	return &VerificationCodeUsecase{
		codeRepo: codeRepo,
		uow:      uow,
		notifier: notifier,
		policy:   policy,
		metrics:  noopMetrics{},
		now:      systemClock,
	}
}

func (u *VerificationCodeUsecase) SetClock(now Clock) {
	u.now = now
}

// SetThrottle enables the resend cooldown. A nil throttle disables it.
func (u *VerificationCodeUsecase) SetThrottle(throttle CodeThrottle) {
	u.throttle = throttle
}

func (u *VerificationCodeUsecase) SetMetrics(metrics MetricsRecorder) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	u.metrics = metrics
}

// RequestCode replaces any outstanding code for the account and purpose with
// a fresh one and emails it. The code is stored even when the email cannot be
// sent; the result reports delivery.
func (u *VerificationCodeUsecase) RequestCode(ctx context.Context, account *entities.Account, purpose entities.CodePurpose) (*entities.CodeIssued, error) {
	if !purpose.Valid() {
		return nil, domainerrors.BadRequest("unknown code purpose")
	}
	if err := u.checkThrottle(ctx, account.ID, purpose); err != nil {
		return nil, err
	}

	value, err := generateCode(u.policy.Length)
	if err != nil {
		return nil, err
	}

	now := u.now()
	code := &entities.VerificationCode{
		ID:          newID(),
		AccountID:   account.ID,
		Purpose:     purpose,
		Code:        value,
		MaxAttempts: u.policy.MaxAttempts,
		ExpiresAt:   now.Add(u.policy.window(purpose)),
		CreatedAt:   now,
	}

	if err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.codeRepo.Replace(txCtx, code)
	}); err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}
	u.metrics.RecordCodeIssued(string(purpose))

	issued := &entities.CodeIssued{
		ChallengeID: code.ID,
		AccountID:   account.ID,
		Purpose:     purpose,
		ExpiresAt:   code.ExpiresAt,
		Delivered:   true,
	}
	if err := u.notifier.SendVerificationCode(ctx, account, code); err != nil {
		issued.Delivered = false
		issued.DeliveryError = err.Error()
		u.metrics.RecordDeliveryFailure("verification_code")
		logger.Warn(ctx, "Verification code delivery failed",
			zap.String("accountId", account.ID.String()),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
	}

	return issued, nil
}

func (u *VerificationCodeUsecase) checkThrottle(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) error {
	if u.throttle == nil {
		return nil
	}
	ok, err := u.throttle.Allow(ctx, throttleKey(accountID, purpose))
	if err != nil {
		logger.Warn(ctx, "Code throttle unavailable, allowing request", zap.Error(err))
		return nil
	}
	if !ok {
		return domainerrors.ErrThrottled
	}
	return nil
}

// resetThrottle lets the user ask for a new code straight away after the
// outstanding one was locked or expired.
func (u *VerificationCodeUsecase) resetThrottle(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) {
	if u.throttle == nil {
		return
	}
	if err := u.throttle.Reset(ctx, throttleKey(accountID, purpose)); err != nil {
		logger.Warn(ctx, "Failed to reset code throttle",
			zap.String("accountId", accountID.String()),
			zap.Error(err),
		)
	}
}

func throttleKey(accountID uuid.UUID, purpose entities.CodePurpose) string {
	return string(purpose) + ":" + accountID.String()
}

// VerifyCode checks a submitted code against the outstanding one. A
// submission naming a challenge other than the outstanding code is treated as
// if no code exists.
//
// Checks run in a fixed order: expiry, lockout, then comparison. Expired and
// locked codes are deleted. A mismatch consumes one attempt; the mismatch that
// uses the last attempt deletes the code and reports it locked. Those writes
// are committed even though the call returns an error.
func (u *VerificationCodeUsecase) VerifyCode(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose, input entities.VerifyCodeInput) (*entities.VerificationResult, error) {
	var (
		result  *entities.VerificationResult
		outcome error
		label   string
	)

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		code, err := u.codeRepo.Get(u.uow.WithLock(txCtx), accountID, purpose)
		if errors.Is(err, domainerrors.ErrNotFound) {
			outcome, label = domainerrors.ErrCodeNotFound, outcomeNotFound
			return nil
		}
		if err != nil {
			return err
		}
		if input.ChallengeID != uuid.Nil && input.ChallengeID != code.ID {
			outcome, label = domainerrors.ErrCodeNotFound, outcomeNotFound
			return nil
		}

		now := u.now()
		switch {
		case code.IsExpired(now):
			outcome, label = domainerrors.ErrCodeExpired, outcomeExpired
			return u.codeRepo.Delete(txCtx, accountID, purpose)
		case code.Verified:
			result = verified(accountID, purpose, true)
			label = outcomeVerified
			return nil
		case code.IsLocked():
			outcome, label = domainerrors.ErrCodeLocked, outcomeLocked
			return u.codeRepo.Delete(txCtx, accountID, purpose)
		}

		if !crypto.EqualCode(code.Code, input.Code) {
			code.Attempts++
			if code.IsLocked() {
				outcome, label = domainerrors.ErrCodeLocked, outcomeLocked
				return u.codeRepo.Delete(txCtx, accountID, purpose)
			}
			outcome, label = &domainerrors.IncorrectCodeError{Remaining: code.Remaining()}, outcomeIncorrect
			return u.codeRepo.Update(txCtx, code)
		}

		code.Verified = true
		result = verified(accountID, purpose, false)
		label = outcomeVerified
		return u.codeRepo.Update(txCtx, code)
	})
	if err != nil {
		return nil, fmt.Errorf("verify code: %w", err)
	}

	u.metrics.RecordVerification(string(purpose), label)
	if label == outcomeLocked || label == outcomeExpired {
		u.resetThrottle(ctx, accountID, purpose)
	}
	if outcome != nil {
		return nil, outcome
	}
	return result, nil
}

func verified(accountID uuid.UUID, purpose entities.CodePurpose, already bool) *entities.VerificationResult {
	return &entities.VerificationResult{
		AccountID:       accountID,
		Purpose:         purpose,
		Status:          entities.VerificationStatusVerified,
		AlreadyVerified: already,
	}
}

// ConsumeVerified deletes the outstanding code if it has been verified and is
// still within its window. It joins the caller's transaction so the deletion
// commits together with the action the code authorizes.
func (u *VerificationCodeUsecase) ConsumeVerified(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		code, err := u.codeRepo.Get(u.uow.WithLock(txCtx), accountID, purpose)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrNotVerified
		}
		if err != nil {
			return err
		}
		if !code.Verified {
			return domainerrors.ErrNotVerified
		}
		if code.IsExpired(u.now()) {
			return domainerrors.ErrCodeExpired
		}
		return u.codeRepo.Delete(txCtx, accountID, purpose)
	})
}

// discardExpired removes the outstanding code in its own unit of work if its
// window has passed. Callers use it after a ConsumeVerified that reported
// ErrCodeExpired was rolled back with their transaction.
func (u *VerificationCodeUsecase) discardExpired(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) {
	removed := false
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		code, err := u.codeRepo.Get(u.uow.WithLock(txCtx), accountID, purpose)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !code.IsExpired(u.now()) {
			return nil
		}
		removed = true
		return u.codeRepo.Delete(txCtx, accountID, purpose)
	})
	if err != nil {
		logger.Warn(ctx, "Failed to remove expired verification code",
			zap.String("accountId", accountID.String()),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		return
	}
	if removed {
		u.resetThrottle(ctx, accountID, purpose)
	}
}

// Cancel discards any outstanding code. Cancelling when none exists is a no-op.
func (u *VerificationCodeUsecase) Cancel(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.codeRepo.Delete(txCtx, accountID, purpose)
	})
}

// PurgeExpired removes codes whose window has passed
func (u *VerificationCodeUsecase) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := u.codeRepo.DeleteExpired(ctx, u.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired codes: %w", err)
	}
	return n, nil
}
