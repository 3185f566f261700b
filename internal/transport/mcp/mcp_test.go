package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/memory"
	"github.com/bokjirang/policybot/internal/service/reminder"
	guest "github.com/bokjirang/policybot/internal/storage/memory"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRelay struct {
	completion core.Completion
	err        error
}

func (s *stubRelay) Complete(context.Context, []core.Turn) (core.Completion, error) {
	return s.completion, s.err
}

type noUsers struct{}

func (noUsers) ByUsername(context.Context, string) (core.User, error) {
	return core.User{}, core.NewUnauthorized()
}

func (noUsers) Create(context.Context, string, string) (core.User, error) {
	return core.User{}, errors.New("read only")
}

type stubReminders struct {
	report reminder.Report
	err    error
}

func (s *stubReminders) RunOnce(context.Context) (reminder.Report, error) {
	return s.report, s.err
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func newHandlers(relay *stubRelay, reminders ReminderRunner) *Handlers {
	store := guest.NewStore()
	compactor := memory.NewCompactor(&config.HistoryConfig{CallerTurns: 12, StoreTurns: 20}, func(s string) int { return len(s) })
	return NewHandlers(chat.NewService(store, store, noUsers{}, relay, compactor, false), reminders)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	return payload.Error.Code
}

func TestHandleAsk_SessionLifecycle(t *testing.T) {
	h := newHandlers(&stubRelay{completion: core.Completion{
		Text:      "근로장려금은 가구 소득 기준이 있습니다.",
		Citations: []string{"https://www.nts.go.kr/a"},
	}}, nil)
	ctx := context.Background()

	result, err := h.HandleAsk(ctx, makeRequest(map[string]any{"message": "근로장려금 자세히 알려줘"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var resp chat.Response
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, core.ModeText, resp.Mode)
	require.NotZero(t, resp.SessionID)

	// session ids arrive as JSON numbers
	sessionArg := map[string]any{"session_id": float64(resp.SessionID)}

	result, err = h.HandleSessionMessages(ctx, makeRequest(sessionArg))
	require.NoError(t, err)
	require.False(t, result.IsError)
	var msgs struct {
		Messages []core.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &msgs))
	assert.Len(t, msgs.Messages, 2)

	result, err = h.HandleSessionList(ctx, makeRequest(nil))
	require.NoError(t, err)
	var list struct {
		Sessions []core.Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &list))
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, resp.SessionID, list.Sessions[0].ID)

	result, err = h.HandleSessionDelete(ctx, makeRequest(sessionArg))
	require.NoError(t, err)
	require.False(t, result.IsError)

	result, err = h.HandleSessionMessages(ctx, makeRequest(sessionArg))
	require.NoError(t, err)
	assert.Equal(t, string(core.ErrNotFound), errorCode(t, result))
}

func TestHandleAsk_Errors(t *testing.T) {
	tests := []struct {
		name     string
		relayErr error
		args     map[string]any
		wantCode string
		wantText string
	}{
		{
			name:     "missing message",
			args:     map[string]any{},
			wantCode: string(core.ErrInvalidRequest),
		},
		{
			name:     "wrong argument type",
			args:     map[string]any{"message": 42},
			wantCode: string(core.ErrInvalidRequest),
		},
		{
			name:     "unknown owner",
			args:     map[string]any{"message": "질문", "owner": "ghost"},
			wantCode: string(core.ErrUnauthorized),
		},
		{
			name:     "rate limited relay keeps the answer shape",
			relayErr: core.NewUpstreamRateLimit(),
			args:     map[string]any{"message": "질문"},
			wantText: core.ReplyUpstreamRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers(&stubRelay{completion: core.Completion{Text: "ok"}, err: tt.relayErr}, nil)

			result, err := h.HandleAsk(context.Background(), makeRequest(tt.args))
			require.NoError(t, err)
			require.True(t, result.IsError)

			if tt.wantText != "" {
				var resp chat.Response
				require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
				assert.Equal(t, tt.wantText, resp.Reply)
				assert.NotZero(t, resp.SessionID)
				return
			}
			assert.Equal(t, tt.wantCode, errorCode(t, result))
		})
	}
}

func TestHandleSessionDelete_InvalidID(t *testing.T) {
	h := newHandlers(&stubRelay{}, nil)

	result, err := h.HandleSessionDelete(context.Background(), makeRequest(map[string]any{"session_id": 0}))
	require.NoError(t, err)
	assert.Equal(t, string(core.ErrInvalidRequest), errorCode(t, result))
}

func TestHandleReminderRun(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		h := newHandlers(&stubRelay{}, &stubReminders{report: reminder.Report{Sent: 3}})

		result, err := h.HandleReminderRun(context.Background(), makeRequest(nil))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.JSONEq(t, `{"sent":3,"failed":0}`, resultText(t, result))
	})

	t.Run("failure is internal", func(t *testing.T) {
		h := newHandlers(&stubRelay{}, &stubReminders{err: errors.New("db gone")})

		result, err := h.HandleReminderRun(context.Background(), makeRequest(nil))
		require.NoError(t, err)
		assert.Equal(t, "INTERNAL", errorCode(t, result))
	})
}

func TestNewServer_RegistersTools(t *testing.T) {
	assert.Equal(t, []string{
		"policy_ask",
		"reminder_run",
		"session_delete",
		"session_list",
		"session_messages",
	}, ToolNames())

	h := newHandlers(&stubRelay{}, nil)
	s := NewServer(h.chat, nil, core.BokjiVersion)
	require.NotNil(t, s)
}
