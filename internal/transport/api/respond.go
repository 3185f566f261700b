package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/log"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    core.ErrorCode `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps every error through core.Error. Unclassified errors are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := core.AsError(err)
	if !ok {
		log.FromCtx(r.Context()).Error().Err(err).Msg("unclassified request error")
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:    "INTERNAL",
			Message: core.ReplyInternal,
		})
		return
	}

	if e.Status >= http.StatusInternalServerError {
		log.FromCtx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, e.Status, errorBody{Code: e.Code, Message: e.Message, Details: e.Details})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return core.NewValidation("요청 본문을 해석할 수 없습니다.")
	}
	return nil
}

func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	return defaultVal
}

// parseID accepts only positive ids. Guest ids are millisecond timestamps
// and exceed int32.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
