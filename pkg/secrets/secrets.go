package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// SealString encrypts plaintext for scope and returns base64 ciphertext.
func SealString(masterKey []byte, scope, plaintext string) (string, error) {
	ct, err := Seal(masterKey, scope, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// OpenString reverses SealString.
func OpenString(masterKey []byte, scope, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	pt, err := Open(masterKey, scope, raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

// Seal encrypts data with AES-256-GCM under a key derived for scope.
// The scope is also bound as additional data, so a ciphertext copied to another scope
// fails to open. Output layout: nonce | ciphertext | tag.
func Seal(masterKey []byte, scope string, data []byte) ([]byte, error) {
	aead, err := newAEAD(masterKey, scope)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aead.Seal(nonce, nonce, data, []byte(scope)), nil
}

// Open decrypts the output of Seal.
func Open(masterKey []byte, scope string, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(masterKey, scope)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	ns := aead.NonceSize()
	if len(ciphertext) < ns+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	nonce, body := ciphertext[:ns], ciphertext[ns:]

	pt, err := aead.Open(nil, nonce, body, []byte(scope))
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return pt, nil
}

func newAEAD(masterKey []byte, scope string) (cipher.AEAD, error) {
	key, err := deriveKey(masterKey, scope)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
