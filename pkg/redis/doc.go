// Package redis is the Redis backend for otpkit backup codes, built on go-redis/v9.
//
// Connect opens the client. Ledger implements backupcode.Ledger:
// pending codes live in a set and redemption runs a Lua script that performs SREM and records
// the consumption time only when SREM removed the member. Redis executes the script
// atomically, so of several concurrent redemptions of one code exactly one sees 1.
//
// All keys of an owner carry the owner in a {hash tag}, keeping them in one slot on Redis
// Cluster so Replace can run as a MULTI/EXEC transaction.
//
//	cfg, err := redis.LoadConfig()
//	client, err := redis.Connect(ctx, cfg)
//	defer client.Close()
//
//	codes := backupcode.NewManager(redis.NewLedger(client, cfg.KeyPrefix))
package redis
