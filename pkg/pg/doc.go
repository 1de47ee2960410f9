// Package pg is the PostgreSQL backend for otpkit, built on pgx/v5.
//
// Connect opens a pgxpool.Pool with startup retries. Migrate applies the embedded goose
// migrations that create the otp_bindings and backup_codes tables.
//
// BindingStorage implements enrollment.Storage. Secrets are sealed with a totp.Sealer under a
// key derived for each owner, so the table never holds a usable secret.
//
// Ledger implements backupcode.Ledger. Redemption is one statement:
//
//	UPDATE backup_codes SET consumed_at = $3
//	WHERE owner = $1 AND code_hash = $2 AND consumed_at IS NULL
//
// and a code counts as redeemed only when exactly one row was affected, which makes
// concurrent redemptions of the same code resolve to a single winner.
//
// # Usage
//
//	cfg, err := pg.LoadConfig()
//	pool, err := pg.Connect(ctx, cfg)
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
//	sealer, err := totp.NewSealerFromConfig(totpCfg)
//	bindings, err := pg.NewBindingStorage(pool, sealer)
//	svc := enrollment.NewService(bindings, backupcode.NewManager(pg.NewLedger(pool)))
package pg
