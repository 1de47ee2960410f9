package backupcode_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
	"github.com/dmitrymomot/otpkit/pkg/backupcode/ledgertest"
)

func TestMemoryLedger_Replace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := backupcode.NewMemoryLedger()
	batchID := uuid.New()
	now := time.Now()

	records := []backupcode.Record{
		{Hash: backupcode.Hash("0000-0000-0000-0001"), BatchID: batchID, CreatedAt: now},
		{Hash: backupcode.Hash("0000-0000-0000-0002"), BatchID: batchID, CreatedAt: now},
	}
	require.NoError(t, l.Replace(ctx, "user-1", records))

	got, err := l.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].Hash, got[0].Hash)
	assert.Equal(t, "user-1", got[0].Owner)
	assert.Equal(t, batchID, got[1].BatchID)

	t.Run("duplicate hash", func(t *testing.T) {
		err := l.Replace(ctx, "user-2", []backupcode.Record{records[0], records[0]})
		assert.ErrorIs(t, err, backupcode.ErrDuplicateCode)
	})

	t.Run("malformed hash", func(t *testing.T) {
		err := l.Replace(ctx, "user-2", []backupcode.Record{{Hash: "zz"}})
		assert.ErrorIs(t, err, backupcode.ErrInvalidRecord)
	})

	t.Run("empty owner", func(t *testing.T) {
		assert.ErrorIs(t, l.Replace(ctx, "", records), backupcode.ErrEmptyOwner)
	})

	t.Run("failed replace keeps the previous batch", func(t *testing.T) {
		got, err := l.List(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestMemoryLedger_MarkConsumed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := backupcode.NewMemoryLedger()
	hash := backupcode.Hash("0000-0000-0000-0001")
	require.NoError(t, l.Replace(ctx, "user-1", []backupcode.Record{{Hash: hash, BatchID: uuid.New()}}))

	ok, err := l.MarkConsumed(ctx, "user-2", hash, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "owners are isolated")

	ok, err = l.MarkConsumed(ctx, "user-1", "not-hex", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.MarkConsumed(ctx, "user-1", hash, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.MarkConsumed(ctx, "user-1", hash, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLedger_SlotReuse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := backupcode.NewMemoryLedger()

	for round := range 5 {
		batch, err := backupcode.GenerateBatch(10)
		require.NoError(t, err)
		require.NoError(t, l.Replace(ctx, "user-1", batch.Records("user-1")))
		require.NoError(t, l.Replace(ctx, "user-2", batch.Records("user-2")))

		got, err := l.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, got, 10, "round %d", round)
		assert.Equal(t, batch.ID, got[0].BatchID)
	}

	require.NoError(t, l.Delete(ctx, "user-1"))
	got, err := l.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = l.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestMemoryLedger_Contract(t *testing.T) {
	t.Parallel()
	ledgertest.Run(t, backupcode.NewMemoryLedger())
}
