package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/mindstash/mindstash/pkg/log"
)

type EngineConfig struct {
	// SearchLimit caps results when the caller does not pass a limit.
	SearchLimit int `env:"MINDSTASH_SEARCH_LIMIT" envDefault:"10"`

	// SimilarityThreshold gates search candidates by cosine similarity
	// when the caller does not supply a threshold.
	SimilarityThreshold float64 `env:"MINDSTASH_SIMILARITY_THRESHOLD" envDefault:"0.5"`

	// ContextMaxTokens is the default session-context budget.
	ContextMaxTokens int `env:"MINDSTASH_CONTEXT_MAX_TOKENS" envDefault:"8000"`
}

func NewEngineConfig(ctx context.Context) *EngineConfig {
	cfg := &EngineConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse engine config")
	}
	return cfg
}

// DefaultEngineConfig returns the built-in defaults without consulting
// the environment. Used by tests and library embedders.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		SearchLimit:         10,
		SimilarityThreshold: 0.5,
		ContextMaxTokens:    8000,
	}
}
