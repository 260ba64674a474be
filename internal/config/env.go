// Package config loads process-level settings for the exposure.report
// CLIs from the environment. Per-screen tuning lives in the screens
// table as params_json, not here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env carries the settings shared by every CLI. Flags override these
// where a command defines them.
type Env struct {
	DBPath        string `env:"EXPOSURE_DB"              envDefault:"exposure_data.db"`
	MigrationsDir string `env:"EXPOSURE_MIGRATIONS_DIR"  envDefault:"migrations"`
	BucketMinutes int    `env:"EXPOSURE_BUCKET_MINUTES"  envDefault:"15"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses the shared CLI settings.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	return cfg, nil
}
