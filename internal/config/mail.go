package config

import (
	"context"

	"github.com/bokjirang/policybot/pkg/log"
	"github.com/caarlos0/env/v11"
)

type MailConfig struct {
	Host     string `env:"EMAIL_HOST"`
	Port     int    `env:"EMAIL_PORT" envDefault:"587"`
	Username string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`
	From     string `env:"MAIL_FROM"`
}

func NewMailConfig(ctx context.Context) *MailConfig {
	c := &MailConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Mail config")
	}
	if c.From == "" {
		c.From = c.Username
	}
	return c
}

func (c MailConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}
