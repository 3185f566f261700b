// Package mcp exposes the chat core as MCP tools over stdio.
package mcp

import (
	"context"
	"sort"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/reminder"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type ReminderRunner interface {
	RunOnce(ctx context.Context) (reminder.Report, error)
}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"policy_ask": {
		def:     askToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAsk },
	},
	"session_list": {
		def:     sessionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionList },
	},
	"session_messages": {
		def:     sessionMessagesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionMessages },
	},
	"session_delete": {
		def:     sessionDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionDelete },
	},
	"reminder_run": {
		def:     reminderRunToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReminderRun },
	},
}

// ToolNames returns the registered tool names in a stable order.
func ToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewServer registers every tool. reminder_run is skipped when reminders
// is nil.
func NewServer(chatSvc *chat.Service, reminders ReminderRunner, version string) *server.MCPServer {
	s := server.NewMCPServer(
		core.BokjiName,
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(chatSvc, reminders)
	for name, entry := range toolRegistry {
		if name == "reminder_run" && reminders == nil {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run serves the tools on stdin/stdout until the client disconnects.
func Run(chatSvc *chat.Service, reminders ReminderRunner, version string) error {
	return server.ServeStdio(NewServer(chatSvc, reminders, version))
}
