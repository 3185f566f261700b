package config

import (
	"context"

	"github.com/bokjirang/policybot/pkg/log"
	"github.com/caarlos0/env/v11"
)

type HistoryConfig struct {
	CallerTurns int    `env:"HISTORY_CALLER_TURNS" envDefault:"12"`
	StoreTurns  int    `env:"HISTORY_STORE_TURNS" envDefault:"20"`
	TokenBudget int    `env:"HISTORY_TOKEN_BUDGET" envDefault:"3000"`
	Encoding    string `env:"HISTORY_TOKEN_ENCODING" envDefault:"cl100k_base"`
}

func NewHistoryConfig(ctx context.Context) *HistoryConfig {
	c := &HistoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse History config")
	}
	return c
}
