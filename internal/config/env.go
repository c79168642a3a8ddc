package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment variable read by [LoadEnv].
const EnvPrefix = "GIFBATCH_"

// LoadEnv applies .env files and GIFBATCH_* environment variables on top of
// cfg. Unset variables leave the existing value in place, so defaults from
// [DefaultConfig] hold. A missing .env file is not an error.
func LoadEnv(cfg *Config, dotenvFiles ...string) error {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
