package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// entry holds one parsed configuration type.
type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	cache           sync.Map // reflect.Type -> *entry
	dotenvLoaded    sync.Once
	dotenvOverrides sync.Mutex
)

// Load fills v from environment variables using `env` struct tags. A .env file in the working
// directory is read first, if present. Each configuration type is parsed once; later calls
// return a copy of the cached value, so services can call Load freely.
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// A failed parse is cached too; call ResetCache after fixing the environment.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvLoaded.Do(func() {
		// missing .env is fine
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()
	raw, _ := cache.LoadOrStore(key, &entry{})
	e := raw.(*entry)

	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})
	if e.err != nil {
		return e.err
	}

	cached, ok := e.value.(T)
	if !ok {
		return ErrConfigNotLoaded
	}
	*v = cached
	return nil
}

// MustLoad is like Load but panics, for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse reads v from the environment without touching the cache.
func Parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadEnv reads the given .env files into the process environment. Variables already set
// are kept. Configuration types loaded before the call keep their cached values until
// ResetCache.
func LoadEnv(paths ...string) error {
	dotenvOverrides.Lock()
	defer dotenvOverrides.Unlock()
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// ResetCache drops every cached configuration.
func ResetCache() {
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}
