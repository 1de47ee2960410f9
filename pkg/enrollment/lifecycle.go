package enrollment

import "github.com/dmitrymomot/otpkit/pkg/statemachine"

// Binding states.
const (
	StatusPending   = statemachine.State("pending")
	StatusActive    = statemachine.State("active")
	StatusAbandoned = statemachine.State("abandoned")
	StatusRevoked   = statemachine.State("revoked")
)

// Lifecycle events.
const (
	EventConfirm = statemachine.Event("confirm")
	EventAbandon = statemachine.Event("abandon")
	EventRevoke  = statemachine.Event("revoke")
)

// newLifecycle builds the binding transition table:
//
//	pending --confirm--> active --revoke--> revoked
//	pending --abandon--> abandoned
//
// Backup code changes are not transition actions; the service applies them after the new
// state is stored.
func newLifecycle() *statemachine.Table {
	return statemachine.MustNew(StatusPending,
		statemachine.WithTransition(StatusPending, StatusActive, EventConfirm),
		statemachine.WithTransition(StatusPending, StatusAbandoned, EventAbandon),
		statemachine.WithTransition(StatusActive, StatusRevoked, EventRevoke),
	)
}
