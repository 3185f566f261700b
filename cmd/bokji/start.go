package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bokjirang/policybot/pkg/log"
	"github.com/bokjirang/policybot/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP API, Telegram bot and reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting bokjirang")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		services := NewServices(ctx, a)

		srv.StartServices(ctx, services)

		if err := srv.ShutdownServices(ctx, services); err != nil {
			logger.Warn().Err(err).Msg("shutdown finished with errors")
		}
		logger.Info().Msg("bokjirang has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
