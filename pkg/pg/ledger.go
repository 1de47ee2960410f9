package pg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
)

// Ledger stores backup code hashes in the backup_codes table.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Replace swaps the owner's codes in one transaction.
func (l *Ledger) Replace(ctx context.Context, owner string, records []backupcode.Record) error {
	if owner == "" {
		return backupcode.ErrEmptyOwner
	}
	return pgx.BeginFunc(ctx, l.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM backup_codes WHERE owner = $1`, owner); err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"backup_codes"},
			[]string{"owner", "code_hash", "batch_id", "created_at", "consumed_at"},
			pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
				r := records[i]
				return []any{owner, r.Hash, r.BatchID, r.CreatedAt, r.ConsumedAt}, nil
			}),
		)
		if IsDuplicateKeyError(err) {
			return backupcode.ErrDuplicateCode
		}
		return err
	})
}

func (l *Ledger) List(ctx context.Context, owner string) ([]backupcode.Record, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT code_hash, batch_id, created_at, consumed_at
		FROM backup_codes WHERE owner = $1
		ORDER BY created_at, code_hash`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backupcode.Record
	for rows.Next() {
		r := backupcode.Record{Owner: owner}
		var batchID uuid.UUID
		if err := rows.Scan(&r.Hash, &batchID, &r.CreatedAt, &r.ConsumedAt); err != nil {
			return nil, err
		}
		r.BatchID = batchID
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkConsumed is a single conditional UPDATE; only the caller that flips consumed_at
// from NULL sees one affected row.
func (l *Ledger) MarkConsumed(ctx context.Context, owner, hash string, at time.Time) (bool, error) {
	tag, err := l.pool.Exec(ctx, `
		UPDATE backup_codes SET consumed_at = $3
		WHERE owner = $1 AND code_hash = $2 AND consumed_at IS NULL`,
		owner, hash, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (l *Ledger) Delete(ctx context.Context, owner string) error {
	_, err := l.pool.Exec(ctx, `DELETE FROM backup_codes WHERE owner = $1`, owner)
	return err
}

var _ backupcode.Ledger = (*Ledger)(nil)
