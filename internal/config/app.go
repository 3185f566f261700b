package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bokjirang/policybot/pkg/log"
	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	RuntimePath string `env:"BOKJI_RUNTIME_PATH" envDefault:".bokjirang"`

	// HTTP API
	HTTPAddr         string        `env:"BOKJI_HTTP_ADDR" envDefault:":8080"`
	HTTPReadTimeout  time.Duration `env:"BOKJI_HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout time.Duration `env:"BOKJI_HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	RenderHTML       bool          `env:"BOKJI_RENDER_HTML" envDefault:"true"`
	InternalToken    string        `env:"BOKJI_INTERNAL_TOKEN"`

	// Transport Flags
	EnableHTTP     bool `env:"BOKJI_ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool `env:"BOKJI_ENABLE_TELEGRAM" envDefault:"false"`

	// Calendar used for reminder deadlines
	TimeZone string `env:"BOKJI_TIMEZONE" envDefault:"Asia/Seoul"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "bokjirang.db")
}

func (c AppConfig) GetInputHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}

// Location falls back to UTC when the zone database is unavailable.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
