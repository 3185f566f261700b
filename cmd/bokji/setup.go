package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/providers/llm"
	"github.com/bokjirang/policybot/internal/providers/mail"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/memory"
	"github.com/bokjirang/policybot/internal/service/reminder"
	guest "github.com/bokjirang/policybot/internal/storage/memory"
	"github.com/bokjirang/policybot/internal/storage/sqlite"
	"github.com/bokjirang/policybot/internal/transport/api"
	"github.com/bokjirang/policybot/internal/transport/telegram"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/bokjirang/policybot/pkg/srv"
	"github.com/joho/godotenv"
)

// app holds the wired core shared by every command.
type app struct {
	cfg       *config.AppConfig
	db        *sql.DB
	users     *sqlite.UsersRepo
	bookmarks *sqlite.BookmarksRepo
	chat      *chat.Service
	scheduler *reminder.Scheduler
}

func newApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	historyCfg := config.NewHistoryConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	users := sqlite.NewUsersRepo(db)
	bookmarks := sqlite.NewBookmarksRepo(db)

	// 3. Model relay and history
	relay := llm.NewPerplexity(config.NewPerplexityConfig(ctx))
	compactor := memory.NewCompactor(historyCfg, memory.NewTokenCounter(historyCfg.Encoding))

	// 4. Chat core, guests in memory and members in sqlite
	chatSvc := chat.NewService(
		guest.NewStore(),
		sqlite.NewSessionStore(db),
		users,
		relay,
		compactor,
		appCfg.RenderHTML,
	)

	// 5. Reminders
	scheduler := reminder.NewScheduler(
		config.NewReminderConfig(ctx),
		bookmarks,
		mail.NewNotifier(ctx, config.NewMailConfig(ctx)),
		appCfg.Location(),
	)

	return &app{
		cfg:       appCfg,
		db:        db,
		users:     users,
		bookmarks: bookmarks,
		chat:      chatSvc,
		scheduler: scheduler,
	}, nil
}

// NewServices returns the long-running services in start order.
func NewServices(ctx context.Context, a *app) []srv.Service {
	logger := log.FromCtx(ctx)
	services := []srv.Service{
		srv.NewCleanup(a.db.Close),
		a.scheduler,
	}

	transports, err := initTransports(ctx, a)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	return append(services, transports...)
}

func initTransports(ctx context.Context, a *app) ([]srv.Service, error) {
	var services []srv.Service

	if a.cfg.EnableHTTP {
		services = append(services, api.NewServer(a.cfg, a.chat, a.scheduler))
	}

	if a.cfg.EnableTelegram {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), a.chat)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
