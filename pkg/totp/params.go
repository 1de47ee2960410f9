package totp

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"strings"
)

// Algorithm names the HMAC digest used for code derivation.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

const (
	DefaultDigits    = 6             // Standard 6-digit codes
	DefaultPeriod    = 30            // 30-second step (RFC 6238)
	DefaultAlgorithm = AlgorithmSHA1 // HMAC-SHA1 (RFC 6238)
	DefaultWindow    = 1             // one step either side of now

	MinDigits = 6
	MaxDigits = 8
	MaxWindow = 10 // steps on either side; each one costs an HMAC per verification
)

// ParseAlgorithm accepts the common spellings used in otpauth URIs ("sha1", "SHA-256", ...).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "") {
	case "", "SHA1":
		return AlgorithmSHA1, nil
	case "SHA256":
		return AlgorithmSHA256, nil
	case "SHA512":
		return AlgorithmSHA512, nil
	default:
		return "", errors.Join(ErrUnsupportedParameter, fmt.Errorf("algorithm %q", s))
	}
}

func (a Algorithm) hash() (func() hash.Hash, error) {
	switch a {
	case AlgorithmSHA1:
		return sha1.New, nil
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	default:
		return nil, errors.Join(ErrUnsupportedParameter, fmt.Errorf("algorithm %q", string(a)))
	}
}

// Params holds the code derivation parameters of a credential.
// It is a plain value: there is no package-level default state, every call receives its Params.
type Params struct {
	Algorithm Algorithm // HMAC digest, SHA1 when empty
	Digits    int       // code length, 6 when zero
	Period    int       // step length in seconds, 30 when zero
}

// DefaultParams returns the RFC 6238 defaults understood by every authenticator app.
func DefaultParams() Params {
	return Params{
		Algorithm: DefaultAlgorithm,
		Digits:    DefaultDigits,
		Period:    DefaultPeriod,
	}
}

// WithDefaults returns a copy with RFC 6238 defaults applied to zero-valued fields.
// Negative values are kept so Validate can reject them.
func (p Params) WithDefaults() Params {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// Validate checks the parameters after defaults have been applied.
func (p Params) Validate() error {
	p = p.WithDefaults()
	if _, err := p.Algorithm.hash(); err != nil {
		return err
	}
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return errors.Join(ErrUnsupportedParameter, fmt.Errorf("digits %d, want %d-%d", p.Digits, MinDigits, MaxDigits))
	}
	if p.Period <= 0 {
		return errors.Join(ErrInvalidConfiguration, fmt.Errorf("period %d, must be positive", p.Period))
	}
	return nil
}
