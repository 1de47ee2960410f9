package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the master key length, 256 bits for AES-256.
	KeySize = 32

	// hkdfInfo separates keys derived here from any other use of the master key.
	hkdfInfo = "otpkit-secrets-v1"
)

// ValidateKey checks the master key length.
func ValidateKey(masterKey []byte) error {
	if len(masterKey) != KeySize {
		return ErrInvalidMasterKey
	}
	return nil
}

// deriveKey returns a per-scope AES key: HKDF-SHA256(masterKey, salt=scope, info=hkdfInfo).
// Callers must clearBytes the result once done with it.
func deriveKey(masterKey []byte, scope string) ([]byte, error) {
	if err := ValidateKey(masterKey); err != nil {
		return nil, err
	}
	if scope == "" {
		return nil, ErrEmptyScope
	}

	r := hkdf.New(sha256.New, masterKey, []byte(scope), []byte(hkdfInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey creates a random master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyGenerationFailed, err)
	}
	return key, nil
}

// GenerateEncodedKey returns a random master key as standard base64, the format expected in
// environment variables.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeKey parses a base64 master key and checks its length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidMasterKey, err)
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return key, nil
}
