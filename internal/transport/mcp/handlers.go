package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/mark3labs/mcp-go/mcp"
)

type Handlers struct {
	chat      *chat.Service
	reminders ReminderRunner
}

func NewHandlers(chatSvc *chat.Service, reminders ReminderRunner) *Handlers {
	return &Handlers{chat: chatSvc, reminders: reminders}
}

type AskRequest struct {
	Message   string             `json:"message"`
	Owner     string             `json:"owner,omitempty"`
	SessionID int64              `json:"session_id,omitempty"`
	History   []core.CompactTurn `json:"history,omitempty"`
}

type SessionListRequest struct {
	Owner string `json:"owner,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type SessionRequest struct {
	SessionID int64  `json:"session_id"`
	Owner     string `json:"owner,omitempty"`
}

type deleteOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (h *Handlers) HandleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := decode[AskRequest](request)
	if err != nil {
		return errorResult(core.NewValidation(err.Error())), nil
	}

	resp, err := h.chat.Ask(ctx, chat.Request{
		Owner:     req.Owner,
		SessionID: req.SessionID,
		Message:   req.Message,
		History:   req.History,
	})
	if err != nil {
		if resp != nil && core.IsUpstream(err) {
			return degradedResult(resp), nil
		}
		return errorResult(err), nil
	}

	return successResult(resp)
}

func (h *Handlers) HandleSessionList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := decode[SessionListRequest](request)
	if err != nil {
		return errorResult(core.NewValidation(err.Error())), nil
	}

	sessions, err := h.chat.ListSessions(ctx, req.Owner, req.Limit)
	if err != nil {
		return errorResult(err), nil
	}
	if sessions == nil {
		sessions = []core.Session{}
	}
	return successResult(map[string]any{"sessions": sessions})
}

func (h *Handlers) HandleSessionMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := decode[SessionRequest](request)
	if err != nil {
		return errorResult(core.NewValidation(err.Error())), nil
	}

	msgs, err := h.chat.Messages(ctx, req.Owner, req.SessionID)
	if err != nil {
		return errorResult(err), nil
	}
	if msgs == nil {
		msgs = []core.Message{}
	}
	return successResult(map[string]any{"messages": msgs})
}

func (h *Handlers) HandleSessionDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := decode[SessionRequest](request)
	if err != nil {
		return errorResult(core.NewValidation(err.Error())), nil
	}
	if req.SessionID <= 0 {
		return errorResult(core.NewValidation("잘못된 세션 ID입니다.")), nil
	}

	if err := h.chat.DeleteSession(ctx, req.Owner, req.SessionID); err != nil {
		return errorResult(err), nil
	}
	return successResult(deleteOutput{OK: true, Message: "삭제되었습니다."})
}

func (h *Handlers) HandleReminderRun(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.reminders.RunOnce(ctx)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("reminder run failed")
		return errorResult(err), nil
	}
	return successResult(report)
}

// errorResult renders classified errors with their code and details.
// Anything else is reported as a generic internal error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if e, ok := core.AsError(err); ok {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": e.Message,
			"status":  e.Status,
		}
		if e.Code != core.ErrPersistence && e.Details != nil {
			errorObj["details"] = e.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": core.ReplyInternal,
				"status":  http.StatusInternalServerError,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// degradedResult keeps the normal answer shape with the localized reply,
// flagged as an error.
func degradedResult(resp *chat.Response) *mcp.CallToolResult {
	content, _ := json.Marshal(resp)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
