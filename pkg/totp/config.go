package totp

import (
	"github.com/dmitrymomot/otpkit/pkg/config"
)

// Config is the deployment policy for TOTP credentials, read from the environment.
type Config struct {
	Issuer        string `env:"TOTP_ISSUER" envDefault:"otpkit"`  // Issuer shown in authenticator apps
	Algorithm     string `env:"TOTP_ALGORITHM" envDefault:"SHA1"` // HMAC digest for new bindings
	Digits        int    `env:"TOTP_DIGITS" envDefault:"6"`       // Code length for new bindings
	Period        int    `env:"TOTP_PERIOD" envDefault:"30"`      // Step length in seconds
	Window        int    `env:"TOTP_WINDOW" envDefault:"1"`       // Accepted steps on either side of now
	SecretSize    int    `env:"TOTP_SECRET_SIZE" envDefault:"20"` // Generated secret length in bytes
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY"`              // Base64 32-byte key for sealing secrets at rest
}

// LoadConfig reads Config from the environment (and .env, if present).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Params converts the configured policy into validated Params.
func (c Config) Params() (Params, error) {
	alg, err := ParseAlgorithm(c.Algorithm)
	if err != nil {
		return Params{}, err
	}
	p := Params{Algorithm: alg, Digits: c.Digits, Period: c.Period}.WithDefaults()
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// VerifyOptions returns the verification policy for the configured parameters.
func (c Config) VerifyOptions() (VerifyOptions, error) {
	p, err := c.Params()
	if err != nil {
		return VerifyOptions{}, err
	}
	opts := VerifyOptions{Params: p, Window: c.Window}
	if err := opts.Validate(); err != nil {
		return VerifyOptions{}, err
	}
	return opts, nil
}
