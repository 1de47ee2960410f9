package backupcode

import "github.com/dmitrymomot/otpkit/pkg/config"

type Config struct {
	Count int `env:"BACKUP_CODE_COUNT" envDefault:"10"` // Codes per batch
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Count < 1 {
		return Config{}, ErrInvalidCount
	}
	return cfg, nil
}
