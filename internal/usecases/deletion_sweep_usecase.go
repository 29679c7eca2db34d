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
	"go.uber.org/zap"
)

var errNoLongerDue = errors.New("no longer due for deletion")

// DeletionSweepUsecase permanently deletes accounts whose grace period has
// elapsed.
type DeletionSweepUsecase struct {
	accountRepo repositories.AccountRepository
	uow         repositories.UnitOfWork
	notifier    Notifier
	batchSize   int
	limit       int
	metrics     MetricsRecorder
}

// NewDeletionSweepUsecase creates a sweep that selects candidates batchSize
// at a time. Zero selects them all at once.
func NewDeletionSweepUsecase(
	accountRepo repositories.AccountRepository,
	uow repositories.UnitOfWork,
	notifier Notifier,
	batchSize int,
) *DeletionSweepUsecase {
	return &DeletionSweepUsecase{
		accountRepo: accountRepo,
		uow:         uow,
		notifier:    notifier,
		batchSize:   batchSize,
		metrics:     noopMetrics{},
	}
}

func (u *DeletionSweepUsecase) SetMetrics(metrics MetricsRecorder) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	u.metrics = metrics
}

// SetLimit caps how many accounts a single run handles. Zero means no cap.
func (u *DeletionSweepUsecase) SetLimit(limit int) {
	u.limit = limit
}

// Sweep deletes every account pending deletion with a scheduled time at or
// before now. With dryRun it only reports the candidates.
//
// Accounts are handled independently: a failure is recorded on that account's
// report line and the sweep moves on. Candidates are paged by a cursor, so
// accounts that keep failing never hide the ones scheduled after them. Only a
// failure to select the first page fails the whole sweep.
func (u *DeletionSweepUsecase) Sweep(ctx context.Context, now time.Time, dryRun bool) (*entities.SweepReport, error) {
	started := time.Now()
	report := &entities.SweepReport{
		Now:      now,
		DryRun:   dryRun,
		Accounts: []entities.SweptAccount{},
	}

	var cursor entities.DeletionCursor
	for page := 0; ctx.Err() == nil; page++ {
		size := u.pageSize(len(report.Accounts))
		if size < 0 {
			break
		}
		due, err := u.accountRepo.ListDueForDeletion(ctx, now, cursor, size)
		if err != nil {
			if page == 0 {
				return nil, fmt.Errorf("list accounts due for deletion: %w", err)
			}
			logger.Error(ctx, "Failed to list next deletion batch", zap.Int("page", page), zap.Error(err))
			break
		}

		for _, account := range due {
			if ctx.Err() != nil {
				break
			}
			report.Accounts = append(report.Accounts, u.handle(ctx, now, account, dryRun, report))
			cursor = entities.DeletionCursor{ScheduledAt: account.DeletionScheduledAt.Time, AccountID: account.ID}
		}

		if size == 0 || len(due) < size {
			break
		}
	}

	if !dryRun {
		u.metrics.RecordSweep(report.Deleted, report.Skipped, report.Failed, time.Since(started))
		logger.Info(ctx, "Deletion sweep finished",
			zap.Int("candidates", len(report.Accounts)),
			zap.Int("deleted", report.Deleted),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
	}

	return report, nil
}

// pageSize returns the next select size given how many accounts were handled
// so far, zero for unbounded, or -1 once the run limit is reached.
func (u *DeletionSweepUsecase) pageSize(handled int) int {
	size := u.batchSize
	if u.limit <= 0 {
		return size
	}
	remaining := u.limit - handled
	if remaining <= 0 {
		return -1
	}
	if size <= 0 || remaining < size {
		return remaining
	}
	return size
}

func (u *DeletionSweepUsecase) handle(ctx context.Context, now time.Time, account *entities.Account, dryRun bool, report *entities.SweepReport) entities.SweptAccount {
	line := entities.SweptAccount{
		AccountID:   account.ID,
		Username:    account.Username,
		Email:       account.Email,
		ScheduledAt: account.DeletionScheduledAt.Time,
	}
	if dryRun {
		line.Outcome = entities.SweepOutcomeWouldDelete
		return line
	}

	u.sweepOne(ctx, now, account, &line)
	switch line.Outcome {
	case entities.SweepOutcomeDeleted:
		report.Deleted++
	case entities.SweepOutcomeSkipped:
		report.Skipped++
	case entities.SweepOutcomeFailed:
		report.Failed++
	}
	return line
}

func (u *DeletionSweepUsecase) sweepOne(ctx context.Context, now time.Time, candidate *entities.Account, line *entities.SweptAccount) {
	fields := []zap.Field{zap.String("accountId", candidate.ID.String())}

	// The user may have cancelled since selection.
	current, err := u.accountRepo.GetByID(ctx, candidate.ID)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		line.Outcome = entities.SweepOutcomeSkipped
		return
	case err != nil:
		u.fail(ctx, line, err, fields)
		return
	case !current.DueForDeletion(now):
		line.Outcome = entities.SweepOutcomeSkipped
		return
	}

	if err := u.notifier.SendAccountDeleted(ctx, current); err != nil {
		u.metrics.RecordDeliveryFailure("account_deleted")
		logger.Warn(ctx, "Failed to send account deleted notice", append(fields, zap.Error(err))...)
	} else {
		line.Notified = true
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		locked, err := u.accountRepo.GetByID(u.uow.WithLock(txCtx), candidate.ID)
		if err != nil {
			return err
		}
		if !locked.DueForDeletion(now) {
			return errNoLongerDue
		}
		return u.accountRepo.Delete(txCtx, candidate.ID)
	})
	switch {
	case err == nil:
		line.Outcome = entities.SweepOutcomeDeleted
		logger.Info(ctx, "Account deleted", fields...)
	case errors.Is(err, errNoLongerDue), errors.Is(err, domainerrors.ErrNotFound):
		line.Outcome = entities.SweepOutcomeSkipped
	default:
		u.fail(ctx, line, err, fields)
	}
}

func (u *DeletionSweepUsecase) fail(ctx context.Context, line *entities.SweptAccount, err error, fields []zap.Field) {
	line.Outcome = entities.SweepOutcomeFailed
	line.Error = err.Error()
	logger.Error(ctx, "Failed to delete account", append(fields, zap.Error(err))...)
}
