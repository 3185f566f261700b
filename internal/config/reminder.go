package config

import (
	"context"

	"github.com/bokjirang/policybot/pkg/log"
	"github.com/caarlos0/env/v11"
)

type ReminderConfig struct {
	Enabled    bool   `env:"REMINDER_ENABLED" envDefault:"true"`
	Schedule   string `env:"REMINDER_SCHEDULE" envDefault:"@hourly"`
	DaysBefore int    `env:"REMINDER_DAYS_BEFORE" envDefault:"7"`
	RunOnStart bool   `env:"REMINDER_RUN_ON_START" envDefault:"true"`
}

func NewReminderConfig(ctx context.Context) *ReminderConfig {
	c := &ReminderConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Reminder config")
	}
	return c
}
