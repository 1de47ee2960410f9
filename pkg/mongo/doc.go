// Package mongo is the MongoDB backend for otpkit backup codes, built on mongo-driver/v2.
//
// New and NewWithDatabase connect with startup retries.
// Ledger implements backupcode.Ledger with one document per code. Redemption is a conditional
// UpdateOne filtered on consumed: false, and succeeds only when ModifiedCount is 1.
//
//	cfg, err := mongo.LoadConfig()
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	ledger := mongo.NewLedger(db)
//	if err := ledger.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
//	codes := backupcode.NewManager(ledger)
package mongo
