// Package enrollment binds TOTP secrets to owners and drives the binding lifecycle.
//
// A binding is created pending by Enroll (or EnrollWithSecret for an imported secret) together
// with its provisioning URI and a batch of backup codes. Confirm checks the first code from the
// authenticator app and activates the binding; only then do the backup codes become redeemable.
// Verify accepts codes for active bindings and rejects a time step that was already used.
//
//	pending --confirm--> active --revoke--> revoked
//	pending --abandon--> abandoned
//
// # Usage
//
//	svc := enrollment.NewService(storage, backupcode.NewManager(ledger),
//	    enrollment.WithIssuer("Acme"),
//	    enrollment.WithLogger(log),
//	)
//
//	res, err := svc.Enroll(ctx, userID, "alice@example.com")
//	// show res.URI (or svc.QRCode(res.URI, 256)) and res.BackupCodes once
//
//	ok, err := svc.Confirm(ctx, userID, "alice@example.com", code, time.Now())
//
//	ok, err = svc.Verify(ctx, userID, "alice@example.com", code, time.Now())
//	if errors.Is(err, enrollment.ErrCodeReplayed) {
//	    // same code submitted twice
//	}
//
// Storage is an interface; MemoryStorage serves tests and development, pkg/pg provides a
// PostgreSQL implementation with secrets sealed at rest.
//
// The service serializes operations on one (owner, label) inside a process. Several instances
// sharing a database may race on the replay check.
package enrollment
