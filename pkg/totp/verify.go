package totp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VerifyOptions configures a verification.
// Window is the number of steps accepted on either side of the current one.
type VerifyOptions struct {
	Params Params
	Window int
}

// Validate checks the window; Params are validated where they are used.
func (o VerifyOptions) Validate() error {
	if o.Window < 0 || o.Window > MaxWindow {
		return errors.Join(ErrInvalidConfiguration, fmt.Errorf("window %d, must be between 0 and %d", o.Window, MaxWindow))
	}
	return nil
}

// DefaultVerifyOptions returns RFC 6238 parameters with a window of one step.
func DefaultVerifyOptions() VerifyOptions {
	return VerifyOptions{Params: DefaultParams(), Window: DefaultWindow}
}

// NormalizeCode strips whitespace and dash separators from a submitted code and checks that
// exactly digits ASCII digits remain.
func NormalizeCode(candidate string, digits int) (string, error) {
	code := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '-' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, candidate)

	if len(code) != digits {
		return "", ErrInvalidCodeFormat
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", ErrInvalidCodeFormat
		}
	}
	return code, nil
}

// Verify reports whether candidate matches secret at any step in [now-window, now+window].
func Verify(secret Secret, candidate string, now time.Time, opts VerifyOptions) (bool, error) {
	_, ok, err := Match(secret, candidate, now, opts)
	return ok, err
}

// Match is Verify that also returns the matched time step.
// Every step of the window is computed and compared in constant time, so the running time
// does not depend on which step (if any) matched.
func Match(secret Secret, candidate string, now time.Time, opts VerifyOptions) (uint64, bool, error) {
	p := opts.Params.WithDefaults()
	if err := p.Validate(); err != nil {
		return 0, false, err
	}
	if err := opts.Validate(); err != nil {
		return 0, false, err
	}

	code, err := NormalizeCode(candidate, p.Digits)
	if err != nil {
		return 0, false, err
	}

	key, err := DecodeSecret(secret)
	if err != nil {
		return 0, false, err
	}

	current, err := CurrentStep(now, p.Period)
	if err != nil {
		return 0, false, err
	}

	var (
		matched uint64
		found   int
	)
	for k := -opts.Window; k <= opts.Window; k++ {
		if k < 0 && uint64(-k) > current {
			continue
		}
		step := current + uint64(k)
		want, err := GenerateHOTP(key, step, p)
		if err != nil {
			return 0, false, err
		}
		eq := subtle.ConstantTimeCompare([]byte(want), []byte(code))
		first := eq & (found ^ 1)
		if first == 1 {
			matched = step
		}
		found |= eq
	}

	return matched, found == 1, nil
}
