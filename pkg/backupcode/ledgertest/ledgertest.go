// Package ledgertest runs the behaviour backupcode.Manager depends on against any
// backupcode.Ledger. Storage packages call Run from their own tests.
package ledgertest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
)

// Concurrency is the number of goroutines racing for one code.
const Concurrency = 32

// Run checks l. Every subtest uses its own owner, so l may hold unrelated data.
func Run(t *testing.T, l backupcode.Ledger) {
	t.Helper()

	t.Run("replace and list", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		owner, at := newOwner(), now()

		recs := batch(t, owner, 5, at)
		require.NoError(t, l.Replace(ctx, owner, recs))

		got, err := l.List(ctx, owner)
		require.NoError(t, err)
		require.Len(t, got, len(recs))
		assert.ElementsMatch(t, hashes(recs), hashes(got))
		for _, r := range got {
			assert.Equal(t, owner, r.Owner)
			assert.Equal(t, recs[0].BatchID, r.BatchID)
			assert.True(t, at.Equal(r.CreatedAt), "created at %s, want %s", r.CreatedAt, at)
			assert.False(t, r.Consumed())
		}
	})

	t.Run("replace drops previous batch", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		owner := newOwner()

		first := batch(t, owner, 3, now())
		require.NoError(t, l.Replace(ctx, owner, first))
		second := batch(t, owner, 4, now())
		require.NoError(t, l.Replace(ctx, owner, second))

		got, err := l.List(ctx, owner)
		require.NoError(t, err)
		assert.ElementsMatch(t, hashes(second), hashes(got))

		ok, err := l.MarkConsumed(ctx, owner, first[0].Hash, now())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate hash", func(t *testing.T) {
		t.Parallel()
		recs := batch(t, newOwner(), 2, now())
		recs[1].Hash = recs[0].Hash
		err := l.Replace(context.Background(), recs[0].Owner, recs)
		assert.ErrorIs(t, err, backupcode.ErrDuplicateCode)
	})

	t.Run("empty owner", func(t *testing.T) {
		t.Parallel()
		err := l.Replace(context.Background(), "", batch(t, "x", 1, now()))
		assert.ErrorIs(t, err, backupcode.ErrEmptyOwner)
	})

	t.Run("mark consumed once", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		owner, at := newOwner(), now()

		recs := batch(t, owner, 3, at)
		require.NoError(t, l.Replace(ctx, owner, recs))

		used := at.Add(time.Minute)
		ok, err := l.MarkConsumed(ctx, owner, recs[1].Hash, used)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = l.MarkConsumed(ctx, owner, recs[1].Hash, used.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = l.MarkConsumed(ctx, owner, backupcode.Hash("0000-0000-0000-0000"), used)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := l.List(ctx, owner)
		require.NoError(t, err)
		consumed := 0
		for _, r := range got {
			if r.Consumed() {
				consumed++
				assert.Equal(t, recs[1].Hash, r.Hash)
				assert.True(t, used.Equal(*r.ConsumedAt), "consumed at %s, want %s", *r.ConsumedAt, used)
			}
		}
		assert.Equal(t, 1, consumed)
	})

	t.Run("owner isolation", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		alice, bob := newOwner(), newOwner()

		recs := batch(t, alice, 2, now())
		require.NoError(t, l.Replace(ctx, alice, recs))

		ok, err := l.MarkConsumed(ctx, bob, recs[0].Hash, now())
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := l.List(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("concurrent mark consumed", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		owner := newOwner()

		recs := batch(t, owner, 2, now())
		require.NoError(t, l.Replace(ctx, owner, recs))

		var (
			wg    sync.WaitGroup
			wins  atomic.Int32
			fails atomic.Int32
			start = make(chan struct{})
		)
		for range Concurrency {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				ok, err := l.MarkConsumed(ctx, owner, recs[0].Hash, now())
				switch {
				case err != nil:
					fails.Add(1)
				case ok:
					wins.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Zero(t, fails.Load())
		assert.Equal(t, int32(1), wins.Load())

		ok, err := l.MarkConsumed(ctx, owner, recs[1].Hash, now())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		owner := newOwner()

		recs := batch(t, owner, 2, now())
		require.NoError(t, l.Replace(ctx, owner, recs))
		require.NoError(t, l.Delete(ctx, owner))
		require.NoError(t, l.Delete(ctx, owner))

		got, err := l.List(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, got)

		ok, err := l.MarkConsumed(ctx, owner, recs[0].Hash, now())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// now is truncated to milliseconds, the coarsest precision among the backends.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func newOwner() string {
	return "owner-" + uuid.NewString()
}

func batch(t *testing.T, owner string, n int, at time.Time) []backupcode.Record {
	t.Helper()
	b, err := backupcode.GenerateBatch(n)
	require.NoError(t, err)
	b.CreatedAt = at
	return b.Records(owner)
}

func hashes(recs []backupcode.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Hash
	}
	return out
}
