package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/mindstash/mindstash/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MINDSTASH_RUNTIME_PATH" envDefault:".mindstash"`

	// Storage selects the record store backend: "memory" or "sqlite".
	Storage string `env:"MINDSTASH_STORAGE" envDefault:"memory"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "mindstash.db")
}

func (c AppConfig) IsSQLite() bool {
	return c.Storage == "sqlite"
}
