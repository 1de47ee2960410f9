package enrollment

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/otpkit/pkg/totp"
)

type Option func(*Service)

// WithIssuer sets the issuer shown in authenticator apps.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithParams sets the code parameters for new bindings. Existing bindings keep theirs.
func WithParams(p totp.Params) Option {
	return func(s *Service) {
		s.params = p.WithDefaults()
	}
}

// WithWindow sets how many steps on either side of now are accepted.
func WithWindow(window int) Option {
	return func(s *Service) {
		s.window = window
	}
}

// WithSecretSize sets the length in bytes of generated secrets.
func WithSecretSize(size int) Option {
	return func(s *Service) {
		s.secretSize = size
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAfterConfirm registers a hook run after a binding becomes active.
// Its error is returned to the caller, the binding stays active.
func WithAfterConfirm(fn func(context.Context, *Binding) error) Option {
	return func(s *Service) {
		s.afterConfirm = fn
	}
}

// WithAfterRevoke registers a hook run after a binding is revoked.
func WithAfterRevoke(fn func(context.Context, *Binding) error) Option {
	return func(s *Service) {
		s.afterRevoke = fn
	}
}
