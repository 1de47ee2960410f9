package enrollment

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/otpkit/pkg/statemachine"
	"github.com/dmitrymomot/otpkit/pkg/totp"
)

// Binding ties a TOTP secret to an owner under a label.
// Params are fixed when the binding is created.
type Binding struct {
	ID        uuid.UUID
	Owner     string
	Label     string
	Issuer    string
	Secret    totp.Secret
	Params    totp.Params
	Status    statemachine.State
	CreatedAt time.Time

	ConfirmedAt *time.Time
	RevokedAt   *time.Time

	// LastUsedStep is the time step of the last accepted code, nil until confirmation.
	LastUsedStep *uint64

	// Backup codes generated at enrollment wait here as hashes until the binding is confirmed.
	PendingBatchID uuid.UUID
	PendingHashes  []string
}

// IsActive reports whether the binding can be used as a second factor.
func (b *Binding) IsActive() bool {
	return b != nil && b.Status == StatusActive
}

// Clone returns a deep copy.
func (b *Binding) Clone() *Binding {
	if b == nil {
		return nil
	}
	c := *b
	c.ConfirmedAt = clonePtr(b.ConfirmedAt)
	c.RevokedAt = clonePtr(b.RevokedAt)
	c.LastUsedStep = clonePtr(b.LastUsedStep)
	c.PendingHashes = slices.Clone(b.PendingHashes)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// EnrollResult is returned once at enrollment. BackupCodes and the secret inside Binding are
// the only plain-text copies; show them to the user and drop them.
type EnrollResult struct {
	Binding     *Binding
	URI         string
	BackupCodes []string
}
