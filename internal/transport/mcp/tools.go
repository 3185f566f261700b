package mcp

import "github.com/mark3labs/mcp-go/mcp"

var askToolDef = mcp.NewTool("policy_ask",
	mcp.WithDescription("Ask a question about Korean government support programs. "+
		"Actionable questions return a structured policy card with ranked sources."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The question, in Korean"),
	),
	mcp.WithString("owner",
		mcp.Description("Member username. Omit for a guest session"),
	),
	mcp.WithNumber("session_id",
		mcp.Description("Existing session to continue. Omit to start a new one"),
	),
	mcp.WithArray("history",
		mcp.Description("Prior turns as {role, content, card?} objects"),
		mcp.Items(map[string]any{"type": "object"}),
	),
)

var sessionListToolDef = mcp.NewTool("session_list",
	mcp.WithDescription("List sessions, most recently updated first"),
	mcp.WithString("owner",
		mcp.Description("Member username. Omit for guest sessions"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sessions to return"),
	),
)

var sessionMessagesToolDef = mcp.NewTool("session_messages",
	mcp.WithDescription("Return the messages of a session in chronological order"),
	mcp.WithNumber("session_id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
	mcp.WithString("owner",
		mcp.Description("Member username. Omit for a guest session"),
	),
)

var sessionDeleteToolDef = mcp.NewTool("session_delete",
	mcp.WithDescription("Delete a session together with its messages"),
	mcp.WithNumber("session_id",
		mcp.Required(),
		mcp.Description("Session id"),
	),
	mcp.WithString("owner",
		mcp.Description("Member username. Omit for a guest session"),
	),
)

var reminderRunToolDef = mcp.NewTool("reminder_run",
	mcp.WithDescription("Send due D-7 deadline reminders now and report how many were sent"),
)
