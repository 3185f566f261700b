package main

import (
	"os"

	"github.com/bokjirang/policybot/internal/core"
	mcpserver "github.com/bokjirang/policybot/internal/transport/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the chat core as MCP tools over stdio",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		ctx, flushLog := setupLoggerTo(cmd.Context(), os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		return mcpserver.Run(a.chat, a.scheduler, core.BokjiVersion)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
