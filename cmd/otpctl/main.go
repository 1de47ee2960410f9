// Command otpctl is an operator tool for TOTP secrets and backup codes.
//
//	otpctl keygen                             new TOTP_ENCRYPTION_KEY value
//	otpctl secret -label alice@example.com    new secret, provisioning URI and QR code
//	otpctl code -secret BASE32                current code
//	otpctl verify -secret BASE32 -code 123456 exit status 0 when the code is valid
//	otpctl backup -count 10                   fresh batch of backup codes
//	otpctl inspect -uri otpauth://...         parameters of a provisioning URI
//	otpctl migrate -store pg                  create tables (pg) or indexes (mongo)
//
// Defaults come from the TOTP_*, BACKUP_CODE_*, PG_* and MONGODB_* environment variables
// (and .env).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/otpkit/pkg/backupcode"
	"github.com/dmitrymomot/otpkit/pkg/logger"
	"github.com/dmitrymomot/otpkit/pkg/mongo"
	"github.com/dmitrymomot/otpkit/pkg/pg"
	"github.com/dmitrymomot/otpkit/pkg/qrcode"
	"github.com/dmitrymomot/otpkit/pkg/totp"
)

var errInvalidCode = errors.New("code rejected")

type command struct {
	name  string
	usage string
	run   func(args []string, out io.Writer) error
}

func main() {
	log := logger.New(logger.WithFormat(logger.FormatText), logger.WithOutput(os.Stderr))
	logger.SetAsDefault(log)

	commands := []command{
		{"keygen", "generate an encryption key for TOTP_ENCRYPTION_KEY", runKeygen},
		{"secret", "generate a secret and its provisioning URI", runSecret},
		{"code", "print the current code for a secret", runCode},
		{"verify", "check a code against a secret", runVerify},
		{"backup", "generate a batch of backup codes", runBackup},
		{"inspect", "show the parameters of an otpauth URI", runInspect},
		{"migrate", "prepare a storage backend", runMigrate},
	}

	if len(os.Args) < 2 {
		usage(os.Stderr, commands)
		os.Exit(2)
	}

	for _, c := range commands {
		if c.name != os.Args[1] {
			continue
		}
		if err := c.run(os.Args[2:], os.Stdout); err != nil {
			if errors.Is(err, errInvalidCode) {
				fmt.Fprintln(os.Stderr, "invalid")
				os.Exit(1)
			}
			ctx := logger.ContextWith(context.Background(), logger.Component(c.name))
			log.ErrorContext(ctx, "command failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	usage(os.Stderr, commands)
	os.Exit(2)
}

func usage(w io.Writer, commands []command) {
	fmt.Fprintln(w, "usage: otpctl <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.usage)
	}
}

// loadPolicy reads the TOTP_* environment; invalid values fall back to RFC 6238 defaults
// with a warning so the tool stays usable on a misconfigured host.
func loadPolicy() totp.Config {
	cfg, err := totp.LoadConfig()
	if err != nil {
		slog.Warn("ignoring TOTP_* environment", logger.Error(err))
		return totp.Config{Issuer: "otpkit", Algorithm: "SHA1", Digits: 6, Period: 30, Window: 1, SecretSize: 20}
	}
	return cfg
}

// paramFlags registers the code parameter flags on fs.
func paramFlags(fs *flag.FlagSet, cfg *totp.Config) {
	fs.StringVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "HMAC algorithm: SHA1, SHA256 or SHA512")
	fs.IntVar(&cfg.Digits, "digits", cfg.Digits, "code length, 6 to 8")
	fs.IntVar(&cfg.Period, "period", cfg.Period, "time step in seconds")
}

func runKeygen(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := totp.GenerateEncryptionKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, key)
	return nil
}

func runSecret(args []string, out io.Writer) error {
	cfg := loadPolicy()
	fs := flag.NewFlagSet("secret", flag.ContinueOnError)
	label := fs.String("label", "", "account name shown in the authenticator (required)")
	fs.StringVar(&cfg.Issuer, "issuer", cfg.Issuer, "issuer shown in the authenticator")
	fs.IntVar(&cfg.SecretSize, "size", cfg.SecretSize, "secret length in bytes")
	showQR := fs.Bool("qr", true, "print the URI as a QR code")
	paramFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := cfg.Params()
	if err != nil {
		return err
	}
	secret, err := totp.GenerateSecret(cfg.SecretSize)
	if err != nil {
		return err
	}
	uri, err := totp.ProvisioningURI(cfg.Issuer, *label, secret, p)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "secret: %s\nuri:    %s\n", secret.Reveal(), uri)
	if *showQR {
		art, err := qrcode.Terminal(uri)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, art)
	}
	return nil
}

func runCode(args []string, out io.Writer) error {
	cfg := loadPolicy()
	fs := flag.NewFlagSet("code", flag.ContinueOnError)
	raw := fs.String("secret", os.Getenv("OTP_SECRET"), "base32 secret (default $OTP_SECRET)")
	at := fs.Int64("at", 0, "unix time, default now")
	paramFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := totp.NormalizeSecret(*raw)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}
	now := time.Now()
	if *at != 0 {
		now = time.Unix(*at, 0)
	}

	code, err := totp.GenerateCode(secret, now, p)
	if err != nil {
		return err
	}
	remaining := int64(p.Period) - now.Unix()%int64(p.Period)
	fmt.Fprintf(out, "%s (valid for %ds)\n", code, remaining)
	return nil
}

func runVerify(args []string, out io.Writer) error {
	cfg := loadPolicy()
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	raw := fs.String("secret", os.Getenv("OTP_SECRET"), "base32 secret (default $OTP_SECRET)")
	candidate := fs.String("code", "", "code to check (required)")
	fs.IntVar(&cfg.Window, "window", cfg.Window, "accepted steps on either side of now")
	paramFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret, err := totp.NormalizeSecret(*raw)
	if err != nil {
		return err
	}
	opts, err := cfg.VerifyOptions()
	if err != nil {
		return err
	}

	step, ok, err := totp.Match(secret, *candidate, time.Now(), opts)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidCode
	}
	fmt.Fprintf(out, "valid (step %d)\n", step)
	return nil
}

func runBackup(args []string, out io.Writer) error {
	cfg, err := backupcode.LoadConfig()
	if err != nil {
		cfg.Count = backupcode.DefaultCount
	}
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	fs.IntVar(&cfg.Count, "count", cfg.Count, "number of codes")
	withHashes := fs.Bool("hashes", false, "print the SHA-256 hash stored for each code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	batch, err := backupcode.GenerateBatch(cfg.Count)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "batch %s\n", batch.ID)
	for _, code := range batch.Codes {
		if *withHashes {
			fmt.Fprintf(out, "%s  %s\n", code, backupcode.Hash(code))
			continue
		}
		fmt.Fprintln(out, code)
	}
	return nil
}

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	raw := fs.String("uri", "", "otpauth:// URI (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := totp.ParseURI(*raw)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "issuer:    %s\nlabel:     %s\nalgorithm: %s\ndigits:    %d\nperiod:    %ds\nsecret:    %s\n",
		key.Issuer, key.Label, key.Params.Algorithm, key.Params.Digits, key.Params.Period, key.Secret)
	return nil
}

var errUnknownStore = errors.New("unknown store")

func runMigrate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	store := fs.String("store", "pg", "backend to prepare: pg or mongo")
	timeout := fs.Duration("timeout", time.Minute, "overall deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *store {
	case "pg":
		cfg, err := pg.LoadConfig()
		if err != nil {
			return err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
			return err
		}
	case "mongo":
		cfg, err := mongo.LoadConfig()
		if err != nil {
			return err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Client().Disconnect(context.Background()) }()
		if err := mongo.NewLedger(db).EnsureIndexes(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownStore, *store)
	}

	fmt.Fprintf(out, "%s ready\n", *store)
	return nil
}
