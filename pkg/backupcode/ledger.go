package backupcode

import (
	"context"
	"time"
)

// Ledger persists backup code state. Implementations live next to their storage drivers
// (MemoryLedger here, pg.Ledger, redis.Ledger, mongo.Ledger).
type Ledger interface {
	// Replace atomically drops every code of owner and stores records as the active batch.
	Replace(ctx context.Context, owner string, records []Record) error

	// List returns all codes of owner, consumed ones included.
	List(ctx context.Context, owner string) ([]Record, error)

	// MarkConsumed flips a pending code to consumed in a single compare-and-set step.
	// It returns true only for the call that performed the flip; unknown or already
	// consumed codes return false with a nil error.
	MarkConsumed(ctx context.Context, owner, hash string, at time.Time) (bool, error)

	// Delete removes every code of owner.
	Delete(ctx context.Context, owner string) error
}
