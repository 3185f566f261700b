package main

import (
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:          "notify",
	Short:        "Send due deadline reminders once and exit",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		report, err := a.scheduler.RunOnce(ctx)
		if err != nil {
			return err
		}

		log.FromCtx(ctx).Info().
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Msg("reminder run finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
