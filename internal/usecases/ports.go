package usecases

import (
	"context"
	"time"

	"appstore.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// Notifier delivers account lifecycle emails. Implementations report
// transport failures; callers decide whether a failure is fatal.
type Notifier interface {
	SendVerificationCode(ctx context.Context, account *entities.Account, code *entities.VerificationCode) error
	SendDeletionScheduled(ctx context.Context, account *entities.Account, scheduledAt time.Time) error
	SendDeletionCancelled(ctx context.Context, account *entities.Account) error
	SendAccountDeleted(ctx context.Context, account *entities.Account) error
	SendPasswordChanged(ctx context.Context, account *entities.Account) error
}

// CodeThrottle limits how often a code may be re-issued for the same key.
// Reset lifts the limit early, once the code it guarded is gone.
type CodeThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// MetricsRecorder receives lifecycle counters.
type MetricsRecorder interface {
	RecordCodeIssued(purpose string)
	RecordVerification(purpose, outcome string)
	RecordDeliveryFailure(kind string)
	RecordDeletionScheduled()
	RecordDeletionCancelled()
	RecordSweep(deleted, skipped, failed int, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordCodeIssued(string) {}
func (noopMetrics) RecordVerification(string, string) {}
func (noopMetrics) RecordDeliveryFailure(string) {}
func (noopMetrics) RecordDeletionScheduled() {}
func (noopMetrics) RecordDeletionCancelled() {}
func (noopMetrics) RecordSweep(int, int, int, time.Duration) {}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

var newID = func() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
