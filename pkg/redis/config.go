package redis

import (
	"time"

	"github.com/dmitrymomot/otpkit/pkg/config"
)

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`    // ConnectionURL in the form "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                // RetryAttempts is the number of ping attempts on startup.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`               // RetryInterval is the wait between attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`             // ConnectTimeout bounds the whole connection phase.
	KeyPrefix      string        `env:"REDIS_BACKUP_KEY_PREFIX" envDefault:"otpkit:backup"` // KeyPrefix namespaces backup code keys.
}

// LoadConfig reads Config from REDIS_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
