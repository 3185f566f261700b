package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(url, key string) *Perplexity {
	return NewPerplexity(&config.PerplexityConfig{
		APIKey:      key,
		Model:       "sonar-pro",
		BaseURL:     url,
		Timeout:     5 * time.Second,
		Temperature: 0.2,
		MaxTokens:   1024,
	})
}

func TestPerplexity_Complete(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantErrCode   core.ErrorCode
		wantReply     string
		wantText      string
		wantCitations []string
	}{
		{
			name:          "chat completion shape",
			status:        http.StatusOK,
			body:          `{"choices":[{"message":{"role":"assistant","content":"청년 월세 지원은..."}}],"citations":["https://www.gov.kr/a","https://bokjiro.go.kr/b"]}`,
			wantText:      "청년 월세 지원은...",
			wantCitations: []string{"https://www.gov.kr/a", "https://bokjiro.go.kr/b"},
		},
		{
			name:          "content parts",
			status:        http.StatusOK,
			body:          `{"choices":[{"message":{"content":[{"type":"text","text":"첫째"},{"type":"text","text":"둘째"}]}}]}`,
			wantText:      "첫째\n둘째",
			wantCitations: []string{},
		},
		{
			name:          "legacy text shape",
			status:        http.StatusOK,
			body:          `{"choices":[{"text":"legacy"}]}`,
			wantText:      "legacy",
			wantCitations: []string{},
		},
		{
			name:          "output_text shape",
			status:        http.StatusOK,
			body:          `{"output_text":"responses api","citations":[{"url":"https://www.korea.kr/x"}]}`,
			wantText:      "responses api",
			wantCitations: []string{"https://www.korea.kr/x"},
		},
		{
			name:          "reply shape with search results",
			status:        http.StatusOK,
			body:          `{"reply":"proxy","search_results":[{"url":"https://www.gov.kr/s"}]}`,
			wantText:      "proxy",
			wantCitations: []string{"https://www.gov.kr/s"},
		},
		{
			name:        "2xx without text",
			status:      http.StatusOK,
			body:        `{"choices":[{"message":{"content":"   "}}]}`,
			wantErrCode: core.ErrUpstreamMalformed,
			wantReply:   core.ReplyUpstreamMalformed,
		},
		{
			name:        "2xx not json",
			status:      http.StatusOK,
			body:        `<html>oops</html>`,
			wantErrCode: core.ErrUpstreamMalformed,
			wantReply:   core.ReplyUpstreamMalformed,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			body:        `{"error":"bad key"}`,
			wantErrCode: core.ErrUpstreamAuth,
			wantReply:   core.ReplyUpstreamAuth,
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        `{}`,
			wantErrCode: core.ErrUpstreamAuth,
			wantReply:   core.ReplyUpstreamAuth,
		},
		{
			name:        "rate limited",
			status:      http.StatusTooManyRequests,
			body:        `{}`,
			wantErrCode: core.ErrUpstreamRateLimit,
			wantReply:   core.ReplyUpstreamRateLimit,
		},
		{
			name:        "server error",
			status:      http.StatusServiceUnavailable,
			body:        `upstream down`,
			wantErrCode: core.ErrUpstream,
			wantReply:   core.ReplyUpstream,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			relay := newTestRelay(server.URL, "pplx-test")
			got, err := relay.Complete(context.Background(), []core.Turn{{Role: core.RoleUser, Content: "질문"}})

			if tt.wantErrCode != "" {
				require.Error(t, err)
				e, ok := core.AsError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantErrCode, e.Code)
				assert.Equal(t, tt.wantReply, e.Reply)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantCitations, got.Citations)
		})
	}
}

func TestPerplexity_RequestShape(t *testing.T) {
	var captured chatRequest
	var auth, path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	relay := newTestRelay(server.URL+"/", "pplx-test")
	_, err := relay.Complete(context.Background(), []core.Turn{
		{Role: core.RoleUser, Content: "이전 질문"},
		{Role: core.RoleAssistant, Content: "이전 답변"},
		{Role: core.RoleUser, Content: "지금 질문"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer pplx-test", auth)
	assert.Equal(t, chatCompletionsPath, path)
	assert.Equal(t, "sonar-pro", captured.Model)
	assert.Equal(t, 0.2, captured.Temperature)
	assert.Equal(t, 1024, captured.MaxTokens)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, core.RoleSystem, captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, core.RefusalSentence)
	assert.Equal(t, "지금 질문", captured.Messages[3].Content)
}

func TestPerplexity_MissingKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := newTestRelay(server.URL, "").Complete(context.Background(), nil)

	e, ok := core.AsError(err)
	require.True(t, ok)
	assert.Equal(t, core.ReplyMissingAPIKey, e.Reply)
	assert.False(t, called, "no request without a key")
}

func TestPerplexity_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestRelay(url, "pplx-test").Complete(context.Background(), nil)
	assert.True(t, core.IsCode(err, core.ErrUpstream))
}
