package usecases_test

import (
	"context"
	"sync"
	"time"

	"appstore.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context) // Return mocked context
}

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByLogin(ctx context.Context, login string) (*entities.Account, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Activate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) SetDeletionSchedule(ctx context.Context, id uuid.UUID, requestedAt, scheduledAt time.Time) error {
	args := m.Called(ctx, id, requestedAt, scheduledAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearDeletionSchedule(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) ListDueForDeletion(ctx context.Context, now time.Time, after entities.DeletionCursor, limit int) ([]*entities.Account, error) {
	args := m.Called(ctx, now, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock VerificationCodeRepository
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) Replace(ctx context.Context, code *entities.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) Get(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) (*entities.VerificationCode, error) {
	args := m.Called(ctx, accountID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) Update(ctx context.Context, code *entities.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) Delete(ctx context.Context, accountID uuid.UUID, purpose entities.CodePurpose) error {
	args := m.Called(ctx, accountID, purpose)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// recordingNotifier keeps every message it was asked to send and fails the
// kinds listed in fail.
type recordingNotifier struct {
	mu    sync.Mutex
	codes map[uuid.UUID]map[entities.CodePurpose]string
	sent  []string
	fail  map[string]error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		codes: map[uuid.UUID]map[entities.CodePurpose]string{},
		fail:  map[string]error{},
	}
}

func (n *recordingNotifier) record(kind string) error {
	n.sent = append(n.sent, kind)
	return n.fail[kind]
}

func (n *recordingNotifier) SendVerificationCode(_ context.Context, account *entities.Account, code *entities.VerificationCode) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.codes[account.ID] == nil {
		n.codes[account.ID] = map[entities.CodePurpose]string{}
	}
	n.codes[account.ID][code.Purpose] = code.Code
	return n.record("code:" + string(code.Purpose))
}

func (n *recordingNotifier) SendDeletionScheduled(_ context.Context, _ *entities.Account, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("deletion_scheduled")
}

func (n *recordingNotifier) SendDeletionCancelled(_ context.Context, _ *entities.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("deletion_cancelled")
}

func (n *recordingNotifier) SendAccountDeleted(_ context.Context, _ *entities.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("account_deleted")
}

func (n *recordingNotifier) SendPasswordChanged(_ context.Context, _ *entities.Account) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record("password_changed")
}

func (n *recordingNotifier) lastCode(accountID uuid.UUID, purpose entities.CodePurpose) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[accountID][purpose]
}

func (n *recordingNotifier) count(kind string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, k := range n.sent {
		if k == kind {
			c++
		}
	}
	return c
}

type stubThrottle struct {
	allow    bool
	err      error
	keys     []string
	resetErr error
	resets   []string
}

func (s *stubThrottle) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func (s *stubThrottle) Reset(_ context.Context, key string) error {
	s.resets = append(s.resets, key)
	return s.resetErr
}

// testClock is a settable clock
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingMetrics struct {
	issued        map[string]int
	verifications map[string]int
	failures      map[string]int
	scheduled     int
	cancelled     int
	sweeps        int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		issued:        map[string]int{},
		verifications: map[string]int{},
		failures:      map[string]int{},
	}
}

func (m *recordingMetrics) RecordCodeIssued(purpose string) {
	m.issued[purpose]++
}

func (m *recordingMetrics) RecordVerification(purpose, outcome string) {
	m.verifications[purpose+":"+outcome]++
}

func (m *recordingMetrics) RecordDeliveryFailure(kind string) {
	m.failures[kind]++
}

func (m *recordingMetrics) RecordDeletionScheduled() {
	m.scheduled++
}

func (m *recordingMetrics) RecordDeletionCancelled() {
	m.cancelled++
}

func (m *recordingMetrics) RecordSweep(_, _, _ int, _ time.Duration) {
	m.sweeps++
}
