package enrollment_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
	"github.com/dmitrymomot/otpkit/pkg/enrollment"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) LoadBinding(ctx context.Context, owner, label string) (*enrollment.Binding, error) {
	args := m.Called(ctx, owner, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Binding), args.Error(1)
}

func (m *MockStorage) SaveBinding(ctx context.Context, b *enrollment.Binding) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockStorage) DeleteBinding(ctx context.Context, owner, label string) error {
	args := m.Called(ctx, owner, label)
	return args.Error(0)
}

func (m *MockStorage) ListBindings(ctx context.Context, owner string) ([]*enrollment.Binding, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*enrollment.Binding), args.Error(1)
}

// failingLedger delegates to Ledger and fails Replace or Delete with the configured error.
type failingLedger struct {
	backupcode.Ledger
	replaceErr error
	deleteErr  error
}

func (l failingLedger) Replace(ctx context.Context, owner string, records []backupcode.Record) error {
	if l.replaceErr != nil {
		return l.replaceErr
	}
	return l.Ledger.Replace(ctx, owner, records)
}

func (l failingLedger) Delete(ctx context.Context, owner string) error {
	if l.deleteErr != nil {
		return l.deleteErr
	}
	return l.Ledger.Delete(ctx, owner)
}

// faultyStorage is a MemoryStorage whose SaveBinding fails while failSave matches.
type faultyStorage struct {
	*enrollment.MemoryStorage
	err error

	mu       sync.Mutex
	failSave func(*enrollment.Binding) bool
}

func newFaultyStorage(err error) *faultyStorage {
	return &faultyStorage{MemoryStorage: enrollment.NewMemoryStorage(), err: err}
}

func (s *faultyStorage) failWhen(fn func(*enrollment.Binding) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = fn
}

func (s *faultyStorage) SaveBinding(ctx context.Context, b *enrollment.Binding) error {
	s.mu.Lock()
	fail := s.failSave != nil && s.failSave(b)
	s.mu.Unlock()
	if fail {
		return s.err
	}
	return s.MemoryStorage.SaveBinding(ctx, b)
}
