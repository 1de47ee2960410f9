package totp

import "errors"

var (
	ErrInvalidSecretFormat  = errors.New("invalid TOTP secret format")
	ErrUnsupportedParameter = errors.New("unsupported TOTP parameter")
	ErrInvalidConfiguration = errors.New("invalid TOTP configuration")
	ErrInvalidCodeFormat    = errors.New("invalid TOTP code format")
	ErrRandomSource         = errors.New("secure random source failed")
	ErrInvalidLabel         = errors.New("invalid provisioning label")
	ErrInvalidURI           = errors.New("invalid otpauth URI")
	ErrFailedToSealSecret   = errors.New("failed to seal TOTP secret")
	ErrFailedToOpenSecret   = errors.New("failed to open sealed TOTP secret")
	ErrEncryptionKeyNotSet  = errors.New("TOTP encryption key not set")
	ErrInvalidEncryptionKey = errors.New("invalid TOTP encryption key")
	ErrFailedToGenerateKey  = errors.New("failed to generate encryption key")
)
