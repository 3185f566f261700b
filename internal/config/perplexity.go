package config

import (
	"context"
	"time"

	"github.com/bokjirang/policybot/pkg/log"
	"github.com/caarlos0/env/v11"
)

// PerplexityConfig does not require the key: a missing key is reported to
// the user as a degraded reply instead of stopping the server.
type PerplexityConfig struct {
	APIKey      string        `env:"PERPLEXITY_API_KEY"`
	Model       string        `env:"PERPLEXITY_MODEL" envDefault:"sonar-pro"`
	BaseURL     string        `env:"PERPLEXITY_BASE_URL" envDefault:"https://api.perplexity.ai"`
	Timeout     time.Duration `env:"PERPLEXITY_TIMEOUT" envDefault:"60s"`
	Temperature float64       `env:"PERPLEXITY_TEMPERATURE" envDefault:"0.2"`
	MaxTokens   int           `env:"PERPLEXITY_MAX_TOKENS" envDefault:"1024"`
}

func NewPerplexityConfig(ctx context.Context) *PerplexityConfig {
	c := &PerplexityConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Perplexity config")
	}
	return c
}
