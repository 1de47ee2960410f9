// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with caarlos0/env tags. Load parses each struct type once
// and caches the result; a .env file in the working directory is read on first use through
// joho/godotenv. Every otpkit package that has deployment settings (pkg/totp, pkg/backupcode,
// pkg/pg, pkg/redis, pkg/mongo) exposes a Config struct loaded this way.
//
// # Usage
//
//	type Config struct {
//	    Issuer string `env:"TOTP_ISSUER" envDefault:"otpkit"`
//	    Digits int    `env:"TOTP_DIGITS" envDefault:"6"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Parse skips the cache, which is handy in tests that set variables with t.Setenv.
// LoadEnv reads additional .env files, e.g. one passed on a command line.
//
// # Error Handling
//
// Parsing failures wrap ErrParsingConfig, unreadable files wrap ErrLoadingEnvFile:
//
//	if errors.Is(err, config.ErrParsingConfig) {
//	    // missing required variable or malformed value
//	}
package config
