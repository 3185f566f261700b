package main

import (
	"os"
	"os/signal"

	"github.com/bokjirang/policybot/internal/transport/cli"
	"github.com/spf13/cobra"
)

var chatOwner string

var chatCmd = &cobra.Command{
	Use:          "chat",
	Short:        "Ask questions from the terminal",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// keep the prompt readable, warnings still go to stderr
		ctx, flushLog := setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		repl, err := cli.NewReadLine(a.chat, a.cfg, chatOwner)
		if err != nil {
			return err
		}
		defer repl.Shutdown(ctx)

		return repl.Start(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatOwner, "owner", "o", "", "chat as this member instead of a guest")
	rootCmd.AddCommand(chatCmd)
}
