package backupcode

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCount = 10 // codes per batch

	codeBytes  = 8             // 64 bits of entropy per code
	codeLength = codeBytes * 2 // uppercase hex characters
	groupSize  = 4             // display grouping, XXXX-XXXX-XXXX-XXXX
	maxRerolls = 8             // per code, on an in-batch collision
)

// Batch is a freshly generated set of backup codes.
// Codes hold the plain values; they are shown to the user once and never persisted.
type Batch struct {
	ID        uuid.UUID
	Codes     []string
	CreatedAt time.Time
}

// Hashes returns the storage form of every code in the batch, in order.
func (b Batch) Hashes() []string {
	out := make([]string, len(b.Codes))
	for i, c := range b.Codes {
		out[i] = Hash(c)
	}
	return out
}

// Records returns ledger records for owner, all pending.
func (b Batch) Records(owner string) []Record {
	return newRecords(owner, b.ID, b.Hashes(), b.CreatedAt)
}

// Record is the persisted state of a single backup code.
type Record struct {
	Owner      string
	Hash       string // hex SHA-256 of the normalized code
	BatchID    uuid.UUID
	CreatedAt  time.Time
	ConsumedAt *time.Time // nil while the code is usable
}

// Consumed reports whether the code has been redeemed.
func (r Record) Consumed() bool {
	return r.ConsumedAt != nil
}

func newRecords(owner string, batchID uuid.UUID, hashes []string, at time.Time) []Record {
	out := make([]Record, len(hashes))
	for i, h := range hashes {
		out[i] = Record{Owner: owner, Hash: h, BatchID: batchID, CreatedAt: at}
	}
	return out
}

// GenerateBatch creates count pairwise distinct codes from crypto/rand.
func GenerateBatch(count int) (Batch, error) {
	return generateBatch(rand.Reader, count, time.Now())
}

func generateBatch(r io.Reader, count int, now time.Time) (Batch, error) {
	if count < 1 {
		return Batch{}, ErrInvalidCount
	}

	codes := make([]string, 0, count)
	seen := make(map[string]struct{}, count)
	buf := make([]byte, codeBytes)

	for len(codes) < count {
		var code string
		for attempt := 0; ; attempt++ {
			if attempt == maxRerolls {
				return Batch{}, errors.Join(ErrRandomSource, ErrDuplicateCode)
			}
			if _, err := io.ReadFull(r, buf); err != nil {
				return Batch{}, errors.Join(ErrRandomSource, err)
			}
			code = strings.ToUpper(hex.EncodeToString(buf))
			if _, dup := seen[code]; !dup {
				break
			}
		}
		seen[code] = struct{}{}
		codes = append(codes, Format(code))
	}

	return Batch{ID: uuid.New(), Codes: codes, CreatedAt: now}, nil
}

// Format groups a code for display: 0123456789ABCDEF becomes 0123-4567-89AB-CDEF.
// Input that does not normalize is returned unchanged.
func Format(code string) string {
	norm, err := NormalizeCode(code)
	if err != nil {
		return code
	}
	var b strings.Builder
	b.Grow(codeLength + codeLength/groupSize - 1)
	for i := 0; i < codeLength; i += groupSize {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(norm[i : i+groupSize])
	}
	return b.String()
}

// NormalizeCode strips separators and whitespace, uppercases, and checks the result is
// exactly 16 hexadecimal characters.
func NormalizeCode(code string) (string, error) {
	norm := strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return -1
		case r >= 'a' && r <= 'f':
			return r - ('a' - 'A')
		}
		return r
	}, code)

	if len(norm) != codeLength {
		return "", ErrBackupCodeNotFound
	}
	for i := 0; i < len(norm); i++ {
		c := norm[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return "", ErrBackupCodeNotFound
		}
	}
	return norm, nil
}

// Hash returns the hex SHA-256 of the normalized code; storage keeps only this value.
// Malformed input hashes as-is and will simply never match a stored code.
func Hash(code string) string {
	if norm, err := NormalizeCode(code); err == nil {
		code = norm
	}
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
