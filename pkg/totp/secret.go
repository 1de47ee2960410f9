package totp

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
	"unicode"
)

// DefaultSecretSize is the length in bytes of generated secrets.
// 160 bits matches the HMAC-SHA1 block recommendation of RFC 4226.
const DefaultSecretSize = 20

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is a shared TOTP secret in its canonical form: unpadded, uppercase RFC 4648 base32.
// Values are produced by NormalizeSecret, EncodeSecret or GenerateSecret only.
type Secret string

// String hides the secret so it never ends up in logs or error messages by accident.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Reveal returns the base32 text of the secret.
func (s Secret) Reveal() string {
	return string(s)
}

// NormalizeSecret converts user or storage supplied text into a canonical Secret.
// All whitespace is dropped, ASCII letters are uppercased and trailing padding is removed.
// Anything outside A-Z2-7 is rejected, it is never substituted or truncated.
func NormalizeSecret(raw string) (Secret, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}

	clean := strings.TrimRight(b.String(), "=")
	if clean == "" {
		return "", ErrInvalidSecretFormat
	}
	for i := 0; i < len(clean); i++ {
		c := clean[i]
		if (c < 'A' || c > 'Z') && (c < '2' || c > '7') {
			return "", ErrInvalidSecretFormat
		}
	}

	// Unpadded base32 never ends on a 1, 3 or 6 character remainder.
	switch len(clean) % 8 {
	case 1, 3, 6:
		return "", ErrInvalidSecretFormat
	}

	return Secret(clean), nil
}

// DecodeSecret returns the raw key bytes of a secret.
// The input is normalized first so callers may pass values loaded from storage as-is.
func DecodeSecret(s Secret) ([]byte, error) {
	norm, err := NormalizeSecret(string(s))
	if err != nil {
		return nil, err
	}
	key, err := b32.DecodeString(string(norm))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecretFormat, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecretFormat
	}
	return key, nil
}

// EncodeSecret returns the canonical base32 form of key.
func EncodeSecret(key []byte) Secret {
	return Secret(b32.EncodeToString(key))
}

// GenerateSecret creates a new random secret of size bytes.
// A non-positive size falls back to DefaultSecretSize.
// Failure of the random source is returned as ErrRandomSource; there is no weaker fallback.
func GenerateSecret(size int) (Secret, error) {
	if size <= 0 {
		size = DefaultSecretSize
	}
	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return "", errors.Join(ErrRandomSource, err)
	}
	return EncodeSecret(key), nil
}
