// Package totp implements the time-based one-time password engine: secret canonicalization,
// RFC 4226 HOTP / RFC 6238 TOTP code derivation, drift-tolerant verification, provisioning URIs
// and at-rest sealing of secrets.
//
// Everything here is a pure function of its inputs. There is no package-level configuration:
// code parameters travel as an explicit Params value and the clock is always passed in, so the
// functions are safe for concurrent use and straightforward to test with fixed vectors.
//
// # Architecture
//
//   - secret.go – Secret type, NormalizeSecret (strip whitespace, uppercase, validate A-Z2-7),
//     DecodeSecret / EncodeSecret and GenerateSecret backed by crypto/rand.
//   - params.go, hotp.go – Params (algorithm, digits, period), GenerateHOTP with dynamic
//     truncation, Generate for a given step and GenerateCode for a wall-clock instant.
//   - verify.go – Verify / Match over a window of adjacent steps with constant-time comparison.
//   - uri.go – ProvisioningURI and ParseURI for the otpauth:// Key URI format.
//   - seal.go – Sealer, AES-256-GCM encryption of secrets bound to their owner (see pkg/secrets).
//   - config.go – Config read from TOTP_* environment variables.
//
// # Usage
//
//	secret, err := totp.GenerateSecret(totp.DefaultSecretSize)
//	if err != nil {
//	    return err
//	}
//
//	uri, _ := totp.ProvisioningURI("Acme", "alice@example.com", secret, totp.DefaultParams())
//	// render uri as a QR code, see pkg/qrcode
//
//	ok, err := totp.Verify(secret, submitted, time.Now(), totp.DefaultVerifyOptions())
//	switch {
//	case errors.Is(err, totp.ErrInvalidCodeFormat):
//	    // reject input without comparing
//	case ok:
//	    // second factor accepted
//	}
//
// # Error Handling
//
// Failures wrap package sentinels with errors.Join: ErrInvalidSecretFormat,
// ErrUnsupportedParameter, ErrInvalidConfiguration, ErrInvalidCodeFormat and ErrRandomSource.
// Inspect them with errors.Is.
//
// Secret.String never prints the secret; use Reveal when the base32 text is really needed.
package totp
