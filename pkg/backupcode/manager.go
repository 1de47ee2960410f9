package backupcode

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/otpkit/pkg/logger"
)

// Manager issues and redeems backup codes against a Ledger.
type Manager struct {
	ledger Ledger
	count  int
	logger *slog.Logger
	now    func() time.Time
	rand   io.Reader
}

type Option func(*Manager)

// WithCount sets the number of codes per batch.
func WithCount(n int) Option {
	return func(m *Manager) {
		m.count = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRandom overrides the random source. It must be cryptographically secure.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) {
		if r != nil {
			m.rand = r
		}
	}
}

// NewManager creates a Manager issuing DefaultCount codes per batch.
func NewManager(ledger Ledger, opts ...Option) *Manager {
	m := &Manager{
		ledger: ledger,
		count:  DefaultCount,
		logger: logger.Discard(),
		now:    time.Now,
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateBatch creates a batch without persisting it.
func (m *Manager) GenerateBatch() (Batch, error) {
	return generateBatch(m.rand, m.count, m.now())
}

// Issue generates a batch and installs it as the owner's active one.
// Any previous batch becomes unusable.
func (m *Manager) Issue(ctx context.Context, owner string) (Batch, error) {
	batch, err := m.GenerateBatch()
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to generate backup codes", logger.Owner(owner), logger.Error(err))
		return Batch{}, err
	}
	if err := m.Install(ctx, owner, batch.ID, batch.Hashes()); err != nil {
		return Batch{}, err
	}
	return batch, nil
}

// Install stores previously generated hashes as the owner's active batch.
func (m *Manager) Install(ctx context.Context, owner string, batchID uuid.UUID, hashes []string) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	if len(hashes) == 0 {
		return ErrInvalidCount
	}
	if err := m.ledger.Replace(ctx, owner, newRecords(owner, batchID, hashes, m.now())); err != nil {
		m.logger.ErrorContext(ctx, "failed to store backup codes", logger.Owner(owner), logger.BatchID(batchID), logger.Error(err))
		return errors.Join(ErrStorageFailure, err)
	}
	m.logger.InfoContext(ctx, "backup codes issued", logger.Owner(owner), logger.BatchID(batchID), slog.Int("count", len(hashes)))
	return nil
}

// Redeem consumes one pending code of owner. Unknown, malformed and already used codes
// all yield ErrBackupCodeNotFound. Of concurrent calls with the same code exactly one wins.
func (m *Manager) Redeem(ctx context.Context, owner, submitted string) error {
	norm, err := NormalizeCode(submitted)
	if err != nil {
		m.logger.WarnContext(ctx, "backup code rejected", logger.Owner(owner))
		return ErrBackupCodeNotFound
	}

	ok, err := m.ledger.MarkConsumed(ctx, owner, Hash(norm), m.now())
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to consume backup code", logger.Owner(owner), logger.Error(err))
		return errors.Join(ErrStorageFailure, err)
	}
	if !ok {
		m.logger.WarnContext(ctx, "backup code rejected", logger.Owner(owner))
		return ErrBackupCodeNotFound
	}

	m.logger.InfoContext(ctx, "backup code redeemed", logger.Owner(owner))
	return nil
}

// Remaining returns the number of pending codes of owner.
func (m *Manager) Remaining(ctx context.Context, owner string) (int, error) {
	records, err := m.ledger.List(ctx, owner)
	if err != nil {
		return 0, errors.Join(ErrStorageFailure, err)
	}
	n := 0
	for _, r := range records {
		if !r.Consumed() {
			n++
		}
	}
	return n, nil
}

// Invalidate removes every code of owner, e.g. when two-factor authentication is disabled.
func (m *Manager) Invalidate(ctx context.Context, owner string) error {
	if err := m.ledger.Delete(ctx, owner); err != nil {
		return errors.Join(ErrStorageFailure, err)
	}
	m.logger.InfoContext(ctx, "backup codes invalidated", logger.Owner(owner))
	return nil
}
