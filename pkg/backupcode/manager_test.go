package backupcode_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Replace(ctx context.Context, owner string, records []backupcode.Record) error {
	args := m.Called(ctx, owner, records)
	return args.Error(0)
}

func (m *MockLedger) List(ctx context.Context, owner string) ([]backupcode.Record, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backupcode.Record), args.Error(1)
}

func (m *MockLedger) MarkConsumed(ctx context.Context, owner, hash string, at time.Time) (bool, error) {
	args := m.Called(ctx, owner, hash, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) Delete(ctx context.Context, owner string) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestManager_RedeemOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())

	batch, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, batch.Codes, backupcode.DefaultCount)

	remaining, err := m.Remaining(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)

	require.NoError(t, m.Redeem(ctx, "user-1", batch.Codes[3]))

	err = m.Redeem(ctx, "user-1", batch.Codes[3])
	assert.ErrorIs(t, err, backupcode.ErrBackupCodeNotFound)

	remaining, err = m.Remaining(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 9, remaining)

	// Other codes of the batch stay usable.
	require.NoError(t, m.Redeem(ctx, "user-1", batch.Codes[4]))
}

func TestManager_RedeemNormalizesInput(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())

	batch, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	typed := "  " + string(bytes.ToLower([]byte(batch.Codes[0]))) + " "
	require.NoError(t, m.Redeem(ctx, "user-1", typed))
}

func TestManager_UniformRejection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())

	batch, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	for name, code := range map[string]string{
		"malformed":      "not-a-code",
		"unknown":        "0000-0000-0000-0000",
		"empty":          "",
		"other owner":    batch.Codes[0],
		"sql-ish":        "' OR 1=1 --",
		"too long":       batch.Codes[0] + "0",
		"missing digits": batch.Codes[0][:10],
	} {
		owner := "user-1"
		if name == "other owner" {
			owner = "user-2"
		}
		err := m.Redeem(ctx, owner, code)
		assert.Equal(t, backupcode.ErrBackupCodeNotFound, err, name)
	}
}

func TestManager_ConcurrentRedeem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping race test in short mode")
	}
	t.Parallel()

	ctx := context.Background()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())
	batch, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)

	const goroutines = 100
	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		won      atomic.Int64
		notFound atomic.Int64
	)
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			<-start
			switch err := m.Redeem(ctx, "user-1", batch.Codes[0]); {
			case err == nil:
				won.Add(1)
			case errors.Is(err, backupcode.ErrBackupCodeNotFound):
				notFound.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), won.Load())
	assert.Equal(t, int64(goroutines-1), notFound.Load())
}

func TestManager_ReissueInvalidatesPreviousBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())

	old, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	fresh, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, fresh.ID)

	for _, code := range old.Codes {
		assert.ErrorIs(t, m.Redeem(ctx, "user-1", code), backupcode.ErrBackupCodeNotFound)
	}
	require.NoError(t, m.Redeem(ctx, "user-1", fresh.Codes[0]))
}

func TestManager_Invalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())

	batch, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(ctx, "user-1"))

	assert.ErrorIs(t, m.Redeem(ctx, "user-1", batch.Codes[0]), backupcode.ErrBackupCodeNotFound)
	remaining, err := m.Remaining(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, remaining)
}

func TestManager_RandomSourceFailure(t *testing.T) {
	t.Parallel()
	ledger := &MockLedger{}
	m := backupcode.NewManager(ledger, backupcode.WithRandom(failingReader{}))

	_, err := m.Issue(context.Background(), "user-1")
	assert.ErrorIs(t, err, backupcode.ErrRandomSource)
	ledger.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_RerollExhausted(t *testing.T) {
	t.Parallel()
	// A source that always returns the same bytes cannot fill a batch of distinct codes.
	constant := bytes.NewReader(bytes.Repeat([]byte{0x42}, 1024))
	m := backupcode.NewManager(backupcode.NewMemoryLedger(), backupcode.WithRandom(constant), backupcode.WithCount(2))

	_, err := m.GenerateBatch()
	assert.ErrorIs(t, err, backupcode.ErrDuplicateCode)
	assert.ErrorIs(t, err, backupcode.ErrRandomSource)
}

func TestManager_StorageFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("connection reset")

	ledger := &MockLedger{}
	ledger.On("Replace", ctx, "user-1", mock.Anything).Return(boom)
	ledger.On("MarkConsumed", ctx, "user-1", mock.Anything, mock.Anything).Return(false, boom)
	ledger.On("List", ctx, "user-1").Return(nil, boom)
	ledger.On("Delete", ctx, "user-1").Return(boom)

	m := backupcode.NewManager(ledger)

	_, err := m.Issue(ctx, "user-1")
	assert.ErrorIs(t, err, backupcode.ErrStorageFailure)
	assert.ErrorIs(t, err, boom)

	err = m.Redeem(ctx, "user-1", "0123-4567-89AB-CDEF")
	assert.ErrorIs(t, err, backupcode.ErrStorageFailure)

	_, err = m.Remaining(ctx, "user-1")
	assert.ErrorIs(t, err, backupcode.ErrStorageFailure)

	assert.ErrorIs(t, m.Invalidate(ctx, "user-1"), backupcode.ErrStorageFailure)
	ledger.AssertExpectations(t)
}

func TestManager_ClockAndCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ledger := backupcode.NewMemoryLedger()
	m := backupcode.NewManager(ledger, backupcode.WithCount(4), backupcode.WithClock(func() time.Time { return at }))

	batch, err := m.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, batch.Codes, 4)
	require.NoError(t, m.Redeem(ctx, "user-1", batch.Codes[1]))

	records, err := ledger.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.True(t, records[0].CreatedAt.Equal(at))
	require.True(t, records[1].Consumed())
	assert.True(t, records[1].ConsumedAt.Equal(at))
	assert.False(t, records[0].Consumed())
}

func TestManager_InstallValidation(t *testing.T) {
	t.Parallel()
	m := backupcode.NewManager(backupcode.NewMemoryLedger())
	batch, err := m.GenerateBatch()
	require.NoError(t, err)

	assert.ErrorIs(t, m.Install(context.Background(), "", batch.ID, batch.Hashes()), backupcode.ErrEmptyOwner)
	assert.ErrorIs(t, m.Install(context.Background(), "user-1", batch.ID, nil), backupcode.ErrInvalidCount)
}
