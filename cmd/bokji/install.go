package main

import (
	"path/filepath"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/service/installer"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:          "install",
	Short:        "Write the runtime configuration and create the database",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()
		dbPath := config.AppConfig{RuntimePath: runtimePath}.GetDatabasePath()

		if _, err := installer.RunWizard(runtimePath, dbPath); err != nil {
			return err
		}

		envPath := filepath.Join(runtimePath, ".env")
		if err := godotenv.Load(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("failed to load .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Installation complete! You can now run 'bokji start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
