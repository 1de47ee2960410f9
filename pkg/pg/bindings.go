package pg

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/otpkit/pkg/enrollment"
	"github.com/dmitrymomot/otpkit/pkg/statemachine"
	"github.com/dmitrymomot/otpkit/pkg/totp"
)

// BindingStorage keeps enrollment bindings in the otp_bindings table.
// Secrets are sealed per owner before they reach the database.
type BindingStorage struct {
	pool   *pgxpool.Pool
	sealer *totp.Sealer
}

// NewBindingStorage creates a storage over pool. Run Migrate first.
func NewBindingStorage(pool *pgxpool.Pool, sealer *totp.Sealer) (*BindingStorage, error) {
	if sealer == nil {
		return nil, ErrSealerRequired
	}
	return &BindingStorage{pool: pool, sealer: sealer}, nil
}

const bindingColumns = `id, owner, label, issuer, sealed_secret, algorithm, digits, period, status,
	created_at, confirmed_at, revoked_at, last_used_step, pending_batch_id, pending_hashes`

func (s *BindingStorage) LoadBinding(ctx context.Context, owner, label string) (*enrollment.Binding, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bindingColumns+` FROM otp_bindings WHERE owner = $1 AND label = $2`,
		owner, label)

	b, err := s.scan(row)
	if IsNotFoundError(err) {
		return nil, enrollment.ErrBindingNotFound
	}
	return b, err
}

// SaveBinding upserts on (owner, label); a re-enrollment replaces the row and its id.
func (s *BindingStorage) SaveBinding(ctx context.Context, b *enrollment.Binding) error {
	if b == nil || b.Owner == "" {
		return enrollment.ErrInvalidOwner
	}
	sealed, err := s.sealer.Seal(b.Owner, b.Secret)
	if err != nil {
		return err
	}

	var pendingBatch pgtype.UUID
	if b.PendingBatchID != uuid.Nil {
		pendingBatch = pgtype.UUID{Bytes: b.PendingBatchID, Valid: true}
	}
	var lastStep *int64
	if b.LastUsedStep != nil {
		v := int64(*b.LastUsedStep)
		lastStep = &v
	}
	hashes := b.PendingHashes
	if hashes == nil {
		hashes = []string{}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO otp_bindings (`+bindingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (owner, label) DO UPDATE SET
			id = EXCLUDED.id,
			issuer = EXCLUDED.issuer,
			sealed_secret = EXCLUDED.sealed_secret,
			algorithm = EXCLUDED.algorithm,
			digits = EXCLUDED.digits,
			period = EXCLUDED.period,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			confirmed_at = EXCLUDED.confirmed_at,
			revoked_at = EXCLUDED.revoked_at,
			last_used_step = EXCLUDED.last_used_step,
			pending_batch_id = EXCLUDED.pending_batch_id,
			pending_hashes = EXCLUDED.pending_hashes`,
		b.ID, b.Owner, b.Label, b.Issuer, sealed,
		string(b.Params.Algorithm), b.Params.Digits, b.Params.Period, string(b.Status),
		b.CreatedAt, b.ConfirmedAt, b.RevokedAt, lastStep, pendingBatch, hashes,
	)
	return err
}

func (s *BindingStorage) DeleteBinding(ctx context.Context, owner, label string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM otp_bindings WHERE owner = $1 AND label = $2`, owner, label)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return enrollment.ErrBindingNotFound
	}
	return nil
}

func (s *BindingStorage) ListBindings(ctx context.Context, owner string) ([]*enrollment.Binding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bindingColumns+` FROM otp_bindings WHERE owner = $1 ORDER BY created_at, label`,
		owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*enrollment.Binding
	for rows.Next() {
		b, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BindingStorage) scan(row pgx.Row) (*enrollment.Binding, error) {
	var (
		b            enrollment.Binding
		sealed       string
		algorithm    string
		status       string
		confirmedAt  *time.Time
		revokedAt    *time.Time
		lastStep     *int64
		pendingBatch pgtype.UUID
	)
	err := row.Scan(
		&b.ID, &b.Owner, &b.Label, &b.Issuer, &sealed,
		&algorithm, &b.Params.Digits, &b.Params.Period, &status,
		&b.CreatedAt, &confirmedAt, &revokedAt, &lastStep, &pendingBatch, &b.PendingHashes,
	)
	if err != nil {
		return nil, err
	}

	secret, err := s.sealer.Open(b.Owner, sealed)
	if err != nil {
		return nil, errors.Join(totp.ErrFailedToOpenSecret, err)
	}
	b.Secret = secret
	b.Params.Algorithm = totp.Algorithm(algorithm)
	b.Status = statemachine.State(status)
	b.ConfirmedAt = confirmedAt
	b.RevokedAt = revokedAt
	if lastStep != nil {
		v := uint64(*lastStep)
		b.LastUsedStep = &v
	}
	if pendingBatch.Valid {
		b.PendingBatchID = pendingBatch.Bytes
	}
	if len(b.PendingHashes) == 0 {
		b.PendingHashes = nil
	}
	return &b, nil
}

var _ enrollment.Storage = (*BindingStorage)(nil)
