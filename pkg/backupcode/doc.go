// Package backupcode implements single-use recovery codes for accounts protected by TOTP.
//
// A batch of codes (10 by default) is generated from crypto/rand, each carrying 64 bits of
// entropy and rendered as grouped uppercase hex (0123-4567-89AB-CDEF). Only SHA-256 hashes are
// handed to storage. Redeeming a code is a single compare-and-set on the Ledger, so two
// concurrent attempts with the same code produce exactly one success.
//
// Every rejection, whether the code is malformed, unknown or already used, is reported as
// ErrBackupCodeNotFound to avoid leaking which codes exist.
//
//	m := backupcode.NewManager(backupcode.NewMemoryLedger())
//
//	batch, err := m.Issue(ctx, "user-42")
//	// show batch.Codes to the user once
//
//	if err := m.Redeem(ctx, "user-42", submitted); errors.Is(err, backupcode.ErrBackupCodeNotFound) {
//	    // deny
//	}
//
// Ledger implementations backed by PostgreSQL, Redis and MongoDB live in pkg/pg, pkg/redis and
// pkg/mongo.
package backupcode
