package redis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
)

// Ledger keeps backup codes of an owner in three keys sharing one cluster hash slot:
//
//	{prefix}:{owner}:pending   SET  hashes not yet redeemed
//	{prefix}:{owner}:records   HASH hash -> "batchID|createdUnixNano"
//	{prefix}:{owner}:consumed  HASH hash -> consumedUnixNano
type Ledger struct {
	client redis.UniversalClient
	prefix string
}

// consumeScript removes the hash from the pending set and, only if that removal happened,
// records the consumption time. Redis runs scripts atomically.
var consumeScript = redis.NewScript(`
if redis.call('SREM', KEYS[1], ARGV[1]) == 1 then
	redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// NewLedger creates a Ledger. An empty prefix uses "otpkit:backup".
func NewLedger(client redis.UniversalClient, prefix string) *Ledger {
	if prefix == "" {
		prefix = "otpkit:backup"
	}
	return &Ledger{client: client, prefix: prefix}
}

func (l *Ledger) keys(owner string) (pending, records, consumed string) {
	base := l.prefix + ":{" + owner + "}"
	return base + ":pending", base + ":records", base + ":consumed"
}

func (l *Ledger) Replace(ctx context.Context, owner string, list []backupcode.Record) error {
	if owner == "" {
		return backupcode.ErrEmptyOwner
	}
	pendingKey, recordsKey, consumedKey := l.keys(owner)

	seen := make(map[string]struct{}, len(list))
	for _, r := range list {
		if _, dup := seen[r.Hash]; dup {
			return backupcode.ErrDuplicateCode
		}
		seen[r.Hash] = struct{}{}
	}

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, pendingKey, recordsKey, consumedKey)
		for _, r := range list {
			pipe.HSet(ctx, recordsKey, r.Hash, r.BatchID.String()+"|"+strconv.FormatInt(r.CreatedAt.UnixNano(), 10))
			if r.ConsumedAt != nil {
				pipe.HSet(ctx, consumedKey, r.Hash, r.ConsumedAt.UnixNano())
			} else {
				pipe.SAdd(ctx, pendingKey, r.Hash)
			}
		}
		return nil
	})
	return err
}

func (l *Ledger) List(ctx context.Context, owner string) ([]backupcode.Record, error) {
	_, recordsKey, consumedKey := l.keys(owner)

	var recordsCmd, consumedCmd *redis.MapStringStringCmd
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		recordsCmd = pipe.HGetAll(ctx, recordsKey)
		consumedCmd = pipe.HGetAll(ctx, consumedKey)
		return nil
	})
	if err != nil {
		return nil, err
	}

	consumed := consumedCmd.Val()
	out := make([]backupcode.Record, 0, len(recordsCmd.Val()))
	for hash, raw := range recordsCmd.Val() {
		r, err := parseRecord(owner, hash, raw)
		if err != nil {
			return nil, err
		}
		if v, ok := consumed[hash]; ok {
			nanos, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, errors.Join(ErrCorruptRecord, err)
			}
			at := time.Unix(0, nanos)
			r.ConsumedAt = &at
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b backupcode.Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
	return out, nil
}

func (l *Ledger) MarkConsumed(ctx context.Context, owner, hash string, at time.Time) (bool, error) {
	pendingKey, _, consumedKey := l.keys(owner)
	n, err := consumeScript.Run(ctx, l.client, []string{pendingKey, consumedKey}, hash, at.UnixNano()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (l *Ledger) Delete(ctx context.Context, owner string) error {
	pendingKey, recordsKey, consumedKey := l.keys(owner)
	return l.client.Del(ctx, pendingKey, recordsKey, consumedKey).Err()
}

func parseRecord(owner, hash, raw string) (backupcode.Record, error) {
	batch, created, ok := strings.Cut(raw, "|")
	if !ok {
		return backupcode.Record{}, fmt.Errorf("%w: %q", ErrCorruptRecord, raw)
	}
	batchID, err := uuid.Parse(batch)
	if err != nil {
		return backupcode.Record{}, errors.Join(ErrCorruptRecord, err)
	}
	nanos, err := strconv.ParseInt(created, 10, 64)
	if err != nil {
		return backupcode.Record{}, errors.Join(ErrCorruptRecord, err)
	}
	return backupcode.Record{
		Owner:     owner,
		Hash:      hash,
		BatchID:   batchID,
		CreatedAt: time.Unix(0, nanos),
	}, nil
}

var _ backupcode.Ledger = (*Ledger)(nil)
