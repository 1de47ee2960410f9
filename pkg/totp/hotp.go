package totp

import (
	"crypto/hmac"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

var pow10 = [...]uint32{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// GenerateHOTP implements the RFC 4226 HMAC-based One-Time Password algorithm.
// The counter is hashed as an 8-byte big-endian integer, the digest is dynamically
// truncated to 31 bits and reduced to p.Digits decimal digits.
func GenerateHOTP(key []byte, counter uint64, p Params) (string, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return "", err
	}
	if len(key) == 0 {
		return "", ErrInvalidSecretFormat
	}
	newHash, err := p.Algorithm.hash()
	if err != nil {
		return "", err
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: the low nibble of the last byte selects 4 bytes, MSB cleared.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", p.Digits, code%pow10[p.Digits]), nil
}

// Generate returns the code of secret for the given time step.
func Generate(secret Secret, step uint64, p Params) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	return GenerateHOTP(key, step, p)
}

// CurrentStep returns floor(unix(now) / period).
// Instants before the Unix epoch map to step 0.
func CurrentStep(now time.Time, period int) (uint64, error) {
	if period <= 0 {
		return 0, errors.Join(ErrInvalidConfiguration, fmt.Errorf("period %d, must be positive", period))
	}
	unix := now.Unix()
	if unix < 0 {
		return 0, nil
	}
	return uint64(unix) / uint64(period), nil
}

// GenerateCode returns the code of secret for the step containing now.
func GenerateCode(secret Secret, now time.Time, p Params) (string, error) {
	p = p.WithDefaults()
	step, err := CurrentStep(now, p.Period)
	if err != nil {
		return "", err
	}
	return Generate(secret, step, p)
}
