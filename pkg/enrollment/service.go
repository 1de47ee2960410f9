package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
	"github.com/dmitrymomot/otpkit/pkg/logger"
	"github.com/dmitrymomot/otpkit/pkg/qrcode"
	"github.com/dmitrymomot/otpkit/pkg/statemachine"
	"github.com/dmitrymomot/otpkit/pkg/totp"
)

// Service enrolls TOTP credentials, confirms them and verifies codes against them.
type Service struct {
	storage    Storage
	codes      *backupcode.Manager
	lifecycle  *statemachine.Table
	locks      keyLocks
	issuer     string
	params     totp.Params
	window     int
	secretSize int
	logger     *slog.Logger
	now        func() time.Time

	afterConfirm func(context.Context, *Binding) error
	afterRevoke  func(context.Context, *Binding) error
}

// NewService creates a Service with RFC 6238 defaults.
func NewService(storage Storage, codes *backupcode.Manager, opts ...Option) *Service {
	s := &Service{
		storage:    storage,
		codes:      codes,
		issuer:     "otpkit",
		params:     totp.DefaultParams(),
		window:     totp.DefaultWindow,
		secretSize: totp.DefaultSecretSize,
		logger:     logger.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lifecycle = newLifecycle()
	return s
}

// NewServiceFromConfig applies the TOTP_* policy before opts.
func NewServiceFromConfig(storage Storage, codes *backupcode.Manager, cfg totp.Config, opts ...Option) (*Service, error) {
	vo, err := cfg.VerifyOptions()
	if err != nil {
		return nil, err
	}
	if cfg.SecretSize < 10 {
		return nil, errors.Join(totp.ErrInvalidConfiguration, fmt.Errorf("secret size %d, at least 10 bytes required", cfg.SecretSize))
	}
	base := []Option{
		WithIssuer(cfg.Issuer),
		WithParams(vo.Params),
		WithWindow(vo.Window),
		WithSecretSize(cfg.SecretSize),
	}
	return NewService(storage, codes, append(base, opts...)...), nil
}

// Enroll creates a pending binding with a fresh secret and a batch of backup codes.
// The codes become redeemable once the binding is confirmed.
func (s *Service) Enroll(ctx context.Context, owner, label string) (*EnrollResult, error) {
	secret, err := totp.GenerateSecret(s.secretSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate totp secret", logger.Owner(owner), logger.Error(err))
		return nil, err
	}
	return s.enroll(ctx, owner, label, secret)
}

// EnrollWithSecret is Enroll for an existing secret, e.g. one migrated from another system.
func (s *Service) EnrollWithSecret(ctx context.Context, owner, label, rawSecret string) (*EnrollResult, error) {
	secret, err := totp.NormalizeSecret(rawSecret)
	if err != nil {
		return nil, err
	}
	return s.enroll(ctx, owner, label, secret)
}

func (s *Service) enroll(ctx context.Context, owner, label string, secret totp.Secret) (*EnrollResult, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrInvalidOwner
	}
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	uri, err := totp.ProvisioningURI(s.issuer, label, secret, s.params)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(owner, label)
	defer unlock()

	existing, err := s.load(ctx, owner, label)
	switch {
	case err == nil && existing.IsActive():
		return nil, ErrBindingExists
	case err != nil && !errors.Is(err, ErrBindingNotFound):
		return nil, err
	}

	batch, err := s.codes.GenerateBatch()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate backup codes", logger.Owner(owner), logger.Error(err))
		return nil, err
	}

	b := &Binding{
		ID:             uuid.New(),
		Owner:          owner,
		Label:          label,
		Issuer:         s.issuer,
		Secret:         secret,
		Params:         s.params,
		Status:         s.lifecycle.Initial(),
		CreatedAt:      s.now(),
		PendingBatchID: batch.ID,
		PendingHashes:  batch.Hashes(),
	}
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "totp enrollment started",
		logger.Owner(owner), logger.Label(label), logger.BindingID(b.ID))

	return &EnrollResult{Binding: b, URI: uri, BackupCodes: batch.Codes}, nil
}

// Confirm checks the first code from the user's authenticator. On success the binding moves
// from pending to active and its backup codes are installed, replacing any earlier batch.
// A wrong code returns false with a nil error and leaves the binding pending.
func (s *Service) Confirm(ctx context.Context, owner, label, candidate string, now time.Time) (bool, error) {
	unlock := s.locks.lock(owner, label)
	defer unlock()

	b, err := s.load(ctx, owner, label)
	if err != nil {
		return false, err
	}
	if b.Status != StatusPending {
		return false, ErrNotPending
	}

	step, ok, err := totp.Match(b.Secret, candidate, now, s.verifyOptions(b))
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.WarnContext(ctx, "totp confirmation code rejected", logger.Owner(owner), logger.Label(label))
		return false, nil
	}

	prev := b.Clone()
	batchID, hashes := b.PendingBatchID, b.PendingHashes
	if err := s.transition(ctx, b, EventConfirm); err != nil {
		return false, err
	}
	b.ConfirmedAt = &now
	b.LastUsedStep = &step
	b.PendingBatchID = uuid.Nil
	b.PendingHashes = nil

	// Binding first, ledger second. A failed save leaves the owner's codes untouched.
	if err := s.save(ctx, b); err != nil {
		return false, err
	}
	if len(hashes) > 0 {
		if err := s.codes.Install(ctx, owner, batchID, hashes); err != nil {
			return false, s.restore(ctx, prev, err)
		}
	}

	s.logger.InfoContext(ctx, "totp binding confirmed",
		logger.Owner(owner), logger.Label(label), logger.BindingID(b.ID))

	if s.afterConfirm != nil {
		if err := s.afterConfirm(ctx, b.Clone()); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Verify checks a code against an active binding. Each time step is accepted once:
// a code whose step is not newer than the last accepted one fails with ErrCodeReplayed.
func (s *Service) Verify(ctx context.Context, owner, label, candidate string, now time.Time) (bool, error) {
	unlock := s.locks.lock(owner, label)
	defer unlock()

	b, err := s.load(ctx, owner, label)
	if err != nil {
		return false, err
	}
	switch b.Status {
	case StatusActive:
	case StatusPending:
		return false, ErrEnrollmentNotConfirmed
	default:
		return false, ErrNotActive
	}

	step, ok, err := totp.Match(b.Secret, candidate, now, s.verifyOptions(b))
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.WarnContext(ctx, "totp code rejected", logger.Owner(owner), logger.Label(label))
		return false, nil
	}
	if b.LastUsedStep != nil && step <= *b.LastUsedStep {
		s.logger.WarnContext(ctx, "totp code replayed", logger.Owner(owner), logger.Label(label))
		return false, ErrCodeReplayed
	}

	b.LastUsedStep = &step
	if err := s.save(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}

// CurrentCode returns the code for secret at now under the service parameters.
func (s *Service) CurrentCode(secret totp.Secret, now time.Time) (string, error) {
	return totp.GenerateCode(secret, now, s.params)
}

// ProvisioningURI formats the otpauth URI for secret. An empty issuer uses the service issuer.
func (s *Service) ProvisioningURI(label string, secret totp.Secret, issuer string) (string, error) {
	if issuer == "" {
		issuer = s.issuer
	}
	return totp.ProvisioningURI(issuer, label, secret, s.params)
}

// QRCode renders uri as a PNG data URI for an <img> tag.
func (s *Service) QRCode(uri string, size int) (string, error) {
	return qrcode.GenerateBase64Image(uri, size)
}

// RedeemBackupCode consumes one backup code of owner.
// Every rejection is backupcode.ErrBackupCodeNotFound.
func (s *Service) RedeemBackupCode(ctx context.Context, owner, candidate string) error {
	return s.codes.Redeem(ctx, owner, candidate)
}

// RemainingBackupCodes returns how many backup codes owner can still redeem.
func (s *Service) RemainingBackupCodes(ctx context.Context, owner string) (int, error) {
	return s.codes.Remaining(ctx, owner)
}

// RegenerateBackupCodes replaces the owner's backup codes. The owner needs an active binding.
func (s *Service) RegenerateBackupCodes(ctx context.Context, owner string) ([]string, error) {
	active, err := s.hasActiveBinding(ctx, owner, "")
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrEnrollmentNotConfirmed
	}
	batch, err := s.codes.Issue(ctx, owner)
	if err != nil {
		return nil, err
	}
	return batch.Codes, nil
}

// Abandon closes a pending enrollment that was never confirmed.
func (s *Service) Abandon(ctx context.Context, owner, label string) error {
	unlock := s.locks.lock(owner, label)
	defer unlock()

	b, err := s.load(ctx, owner, label)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, b, EventAbandon); err != nil {
		return err
	}
	b.PendingBatchID = uuid.Nil
	b.PendingHashes = nil
	if err := s.save(ctx, b); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "totp enrollment abandoned", logger.Owner(owner), logger.Label(label))
	return nil
}

// Revoke disables an active binding. When it was the owner's last active binding,
// the owner's backup codes are invalidated as well.
func (s *Service) Revoke(ctx context.Context, owner, label string) error {
	unlock := s.locks.lock(owner, label)
	defer unlock()

	b, err := s.load(ctx, owner, label)
	if err != nil {
		return err
	}
	prev := b.Clone()
	if err := s.transition(ctx, b, EventRevoke); err != nil {
		return err
	}
	revokedAt := s.now()
	b.RevokedAt = &revokedAt
	if err := s.save(ctx, b); err != nil {
		return err
	}

	// Must run after the save: two labels revoked at once each see the other's new state.
	others, err := s.hasActiveBinding(ctx, owner, label)
	if err != nil {
		return s.restore(ctx, prev, err)
	}
	if !others {
		if err := s.codes.Invalidate(ctx, owner); err != nil {
			return s.restore(ctx, prev, err)
		}
	}

	s.logger.InfoContext(ctx, "totp binding revoked", logger.Owner(owner), logger.Label(label), logger.BindingID(b.ID))

	if s.afterRevoke != nil {
		return s.afterRevoke(ctx, b.Clone())
	}
	return nil
}

// Purge deletes an abandoned or revoked binding record.
func (s *Service) Purge(ctx context.Context, owner, label string) error {
	unlock := s.locks.lock(owner, label)
	defer unlock()

	b, err := s.load(ctx, owner, label)
	if err != nil {
		return err
	}
	if !s.lifecycle.IsTerminal(b.Status) {
		return ErrBindingInUse
	}
	if err := s.storage.DeleteBinding(ctx, owner, label); err != nil {
		if errors.Is(err, ErrBindingNotFound) {
			return ErrBindingNotFound
		}
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}

// Binding returns the binding stored for owner and label.
func (s *Service) Binding(ctx context.Context, owner, label string) (*Binding, error) {
	return s.load(ctx, owner, label)
}

// Bindings lists every binding of owner.
func (s *Service) Bindings(ctx context.Context, owner string) ([]*Binding, error) {
	list, err := s.storage.ListBindings(ctx, owner)
	if err != nil {
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return list, nil
}

func (s *Service) verifyOptions(b *Binding) totp.VerifyOptions {
	return totp.VerifyOptions{Params: b.Params, Window: s.window}
}

// transition moves b to the state reached by event and maps lifecycle errors.
func (s *Service) transition(ctx context.Context, b *Binding, event statemachine.Event) error {
	next, err := s.lifecycle.Next(ctx, b.Status, event, b)
	if err != nil {
		if statemachine.IsNoTransitionAvailableError(err) {
			switch event {
			case EventRevoke:
				return ErrNotActive
			default:
				return ErrNotPending
			}
		}
		s.logger.ErrorContext(ctx, "binding transition failed",
			logger.Owner(b.Owner), logger.Label(b.Label), logger.Event(string(event)), logger.Error(err))
		return err
	}

	s.logger.DebugContext(ctx, "binding transition",
		logger.BindingID(b.ID), logger.Event(string(event)), logger.Status(string(next)))
	b.Status = next
	return nil
}

// restore writes prev back after the ledger rejected a change that followed a committed
// transition, and returns cause joined with any error from the write.
func (s *Service) restore(ctx context.Context, prev *Binding, cause error) error {
	if err := s.save(ctx, prev); err != nil {
		s.logger.ErrorContext(ctx, "failed to restore binding",
			logger.Owner(prev.Owner), logger.Label(prev.Label), logger.Status(string(prev.Status)), logger.Error(err))
		return errors.Join(cause, err)
	}
	s.logger.WarnContext(ctx, "binding restored after backup code failure",
		logger.Owner(prev.Owner), logger.Label(prev.Label), logger.Status(string(prev.Status)), logger.Error(cause))
	return cause
}

// hasActiveBinding reports whether owner has an active binding other than except.
func (s *Service) hasActiveBinding(ctx context.Context, owner, except string) (bool, error) {
	list, err := s.Bindings(ctx, owner)
	if err != nil {
		return false, err
	}
	for _, b := range list {
		if b.Label != except && b.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) load(ctx context.Context, owner, label string) (*Binding, error) {
	b, err := s.storage.LoadBinding(ctx, owner, label)
	if err != nil {
		if errors.Is(err, ErrBindingNotFound) {
			return nil, ErrBindingNotFound
		}
		s.logger.ErrorContext(ctx, "failed to load binding", logger.Owner(owner), logger.Label(label), logger.Error(err))
		return nil, errors.Join(ErrStorageFailure, err)
	}
	return b, nil
}

func (s *Service) save(ctx context.Context, b *Binding) error {
	if err := s.storage.SaveBinding(ctx, b); err != nil {
		s.logger.ErrorContext(ctx, "failed to save binding", logger.Owner(b.Owner), logger.Label(b.Label), logger.Error(err))
		return errors.Join(ErrStorageFailure, err)
	}
	return nil
}
