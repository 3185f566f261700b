package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/go-chi/chi/v5"
)

const internalTokenHeader = "X-Internal-Token"

type messageView struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Citations []string  `json:"citations,omitempty"`
}

type deleteResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.chat.Ask(r.Context(), req)
	if err != nil {
		// relay failures keep the normal payload with the degraded reply
		if resp != nil && core.IsUpstream(err) {
			writeJSON(w, http.StatusBadGateway, resp)
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	limit := queryInt(r, "limit", 0)

	sessions, err := s.chat.ListSessions(r.Context(), owner, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []core.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseID(r.URL.Query().Get("sessionId"))
	if !ok {
		writeError(w, r, core.NewValidation("sessionId는 필수입니다."))
		return
	}

	msgs, err := s.chat.Messages(r.Context(), r.URL.Query().Get("owner"), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]messageView, len(msgs))
	for i, m := range msgs {
		views[i] = messageView{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Citations: m.Citations,
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, core.NewValidation("잘못된 세션 ID입니다."))
		return
	}

	if err := s.chat.DeleteSession(r.Context(), r.URL.Query().Get("owner"), sessionID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResult{OK: true, Message: "삭제되었습니다."})
}

func (s *Server) runReminders(w http.ResponseWriter, r *http.Request) {
	if s.reminders == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Code: "UNAVAILABLE", Message: "알림 스케줄러가 비활성화되어 있습니다."})
		return
	}

	report, err := s.reminders.RunOnce(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// internalOnly guards operational endpoints with BOKJI_INTERNAL_TOKEN.
// They are closed when no token is configured.
func (s *Server) internalOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.InternalToken
		got := r.Header.Get(internalTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			writeError(w, r, core.NewUnauthorized())
			return
		}
		next.ServeHTTP(w, r)
	})
}
