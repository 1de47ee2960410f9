package backupcode

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process Ledger. Records live in a fixed-size slot arena indexed by
// (owner, hash); a single mutex serializes writers, so MarkConsumed is a plain
// check-and-flip on one slot.
type MemoryLedger struct {
	mu      sync.Mutex
	slots   []slot
	free    []int
	index   map[slotKey]int
	byOwner map[string][]int
}

type slotKey struct {
	owner string
	hash  [32]byte
}

type slot struct {
	live       bool
	key        slotKey
	batch      uuid.UUID
	createdAt  int64 // unix nanos
	consumedAt int64 // unix nanos, 0 while pending
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		index:   make(map[slotKey]int),
		byOwner: make(map[string][]int),
	}
}

func parseHash(s string) ([32]byte, bool) {
	var h [32]byte
	if hex.DecodedLen(len(s)) != len(h) {
		return h, false
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, false
	}
	return h, true
}

func (l *MemoryLedger) Replace(_ context.Context, owner string, records []Record) error {
	if owner == "" {
		return ErrEmptyOwner
	}

	keys := make([]slotKey, len(records))
	seen := make(map[[32]byte]struct{}, len(records))
	for i, r := range records {
		h, ok := parseHash(r.Hash)
		if !ok {
			return ErrInvalidRecord
		}
		if _, dup := seen[h]; dup {
			return ErrDuplicateCode
		}
		seen[h] = struct{}{}
		keys[i] = slotKey{owner: owner, hash: h}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.dropLocked(owner)

	ids := make([]int, 0, len(records))
	for i, r := range records {
		s := slot{
			live:      true,
			key:       keys[i],
			batch:     r.BatchID,
			createdAt: r.CreatedAt.UnixNano(),
		}
		if r.ConsumedAt != nil {
			s.consumedAt = r.ConsumedAt.UnixNano()
		}
		id := l.allocLocked(s)
		l.index[s.key] = id
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		l.byOwner[owner] = ids
	}
	return nil
}

func (l *MemoryLedger) List(_ context.Context, owner string) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.byOwner[owner]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		s := l.slots[id]
		r := Record{
			Owner:     owner,
			Hash:      hex.EncodeToString(s.key.hash[:]),
			BatchID:   s.batch,
			CreatedAt: time.Unix(0, s.createdAt),
		}
		if s.consumedAt != 0 {
			at := time.Unix(0, s.consumedAt)
			r.ConsumedAt = &at
		}
		out = append(out, r)
	}
	return out, nil
}

func (l *MemoryLedger) MarkConsumed(_ context.Context, owner, hash string, at time.Time) (bool, error) {
	h, ok := parseHash(hash)
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, ok := l.index[slotKey{owner: owner, hash: h}]
	if !ok {
		return false, nil
	}
	s := &l.slots[id]
	if s.consumedAt != 0 {
		return false, nil
	}
	s.consumedAt = at.UnixNano()
	if s.consumedAt == 0 {
		// the zero instant would read back as pending
		s.consumedAt = 1
	}
	return true, nil
}

func (l *MemoryLedger) Delete(_ context.Context, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropLocked(owner)
	return nil
}

func (l *MemoryLedger) allocLocked(s slot) int {
	if n := len(l.free); n > 0 {
		id := l.free[n-1]
		l.free = l.free[:n-1]
		l.slots[id] = s
		return id
	}
	l.slots = append(l.slots, s)
	return len(l.slots) - 1
}

func (l *MemoryLedger) dropLocked(owner string) {
	for _, id := range l.byOwner[owner] {
		delete(l.index, l.slots[id].key)
		l.slots[id] = slot{}
		l.free = append(l.free, id)
	}
	delete(l.byOwner, owner)
}

var _ Ledger = (*MemoryLedger)(nil)
