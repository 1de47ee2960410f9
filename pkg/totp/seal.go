package totp

import (
	"errors"

	"github.com/dmitrymomot/otpkit/pkg/secrets"
)

// Sealer encrypts secrets for storage. Each owner gets its own derived key, so a sealed
// secret copied to another owner's row does not decrypt.
type Sealer struct {
	key []byte
}

// NewSealer returns a Sealer for a 32-byte master key.
func NewSealer(key []byte) (*Sealer, error) {
	if err := secrets.ValidateKey(key); err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKey, err)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Sealer{key: k}, nil
}

// NewSealerFromConfig decodes TOTP_ENCRYPTION_KEY.
func NewSealerFromConfig(cfg Config) (*Sealer, error) {
	if cfg.EncryptionKey == "" {
		return nil, ErrEncryptionKeyNotSet
	}
	key, err := secrets.DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidEncryptionKey, err)
	}
	return NewSealer(key)
}

// Seal returns the base64 ciphertext of secret bound to owner.
func (s *Sealer) Seal(owner string, secret Secret) (string, error) {
	norm, err := NormalizeSecret(string(secret))
	if err != nil {
		return "", err
	}
	ct, err := secrets.SealString(s.key, owner, norm.Reveal())
	if err != nil {
		return "", errors.Join(ErrFailedToSealSecret, err)
	}
	return ct, nil
}

// Open decrypts a value produced by Seal for the same owner.
func (s *Sealer) Open(owner, sealed string) (Secret, error) {
	pt, err := secrets.OpenString(s.key, owner, sealed)
	if err != nil {
		return "", errors.Join(ErrFailedToOpenSecret, err)
	}
	return NormalizeSecret(pt)
}

// GenerateEncryptionKey returns a new base64 master key for TOTP_ENCRYPTION_KEY.
func GenerateEncryptionKey() (string, error) {
	key, err := secrets.GenerateEncodedKey()
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateKey, err)
	}
	return key, nil
}
