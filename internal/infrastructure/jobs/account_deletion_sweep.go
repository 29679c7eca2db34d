package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"appstore.backend/internal/domain/entities"
	"appstore.backend/pkg/logger"
	redispkg "appstore.backend/pkg/redis"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type deletionSweeper interface {
	Sweep(ctx context.Context, now time.Time, dryRun bool) (*entities.SweepReport, error)
}

type codePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type sweepLock interface {
	Acquire(ctx context.Context) (func(context.Context) error, error)
}

// AccountDeletionSweepJob runs the deletion sweep on a cron schedule and
// clears expired verification codes after each run.
type AccountDeletionSweepJob struct {
	sweeper  deletionSweeper
	purger   codePurger
	lock     sweepLock
	schedule string
	now      func() time.Time

	cron     *cron.Cron
	stopOnce sync.Once
}

// NewAccountDeletionSweepJob creates a job for a standard five-field cron
// expression or a descriptor such as "@every 1h".
func NewAccountDeletionSweepJob(sweeper deletionSweeper, purger codePurger, schedule string) *AccountDeletionSweepJob {
	return &AccountDeletionSweepJob{
		sweeper:  sweeper,
		purger:   purger,
		schedule: schedule,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetLock makes runs skip while another instance holds lock
func (j *AccountDeletionSweepJob) SetLock(lock sweepLock) {
	j.lock = lock
}

// Start schedules the job. Runs stop when ctx is cancelled or Stop is called.
func (j *AccountDeletionSweepJob) Start(ctx context.Context) error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(j.schedule, func() { j.runOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()
	logger.Info(ctx, "Account deletion sweep scheduled", zap.String("schedule", j.schedule))

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish
func (j *AccountDeletionSweepJob) Stop() {
	j.stopOnce.Do(func() {
		if j.cron == nil {
			return
		}
		<-j.cron.Stop().Done()
		logger.Info(context.Background(), "Account deletion sweep stopped")
	})
}

func (j *AccountDeletionSweepJob) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if j.lock != nil {
		release, err := j.lock.Acquire(ctx)
		switch {
		case errors.Is(err, redispkg.ErrLockHeld):
			logger.Debug(ctx, "Deletion sweep already running elsewhere")
			return
		case err != nil:
			// Row locks keep concurrent sweeps safe; the lock only avoids duplicate work.
			logger.Warn(ctx, "Sweep lock unavailable, sweeping anyway", zap.Error(err))
		default:
			defer func() {
				if err := release(context.Background()); err != nil {
					logger.Warn(ctx, "Failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	report, err := j.sweeper.Sweep(ctx, j.now(), false)
	if err != nil {
		logger.Error(ctx, "Deletion sweep failed", zap.Error(err))
	} else if report.Failed > 0 {
		logger.Warn(ctx, "Deletion sweep finished with failures", zap.Int("failed", report.Failed))
	}

	purged, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to purge expired verification codes", zap.Error(err))
		return
	}
	if purged > 0 {
		logger.Info(ctx, "Purged expired verification codes", zap.Int64("count", purged))
	}
}
