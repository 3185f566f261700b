package core

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"        // 401
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrConflict          ErrorCode = "CONFLICT"            // 409
	ErrUpstreamAuth      ErrorCode = "UPSTREAM_AUTH"       // 502
	ErrUpstreamRateLimit ErrorCode = "UPSTREAM_RATE_LIMIT" // 502
	ErrUpstream          ErrorCode = "UPSTREAM"            // 502
	ErrUpstreamMalformed ErrorCode = "UPSTREAM_MALFORMED"  // 502
	ErrPersistence       ErrorCode = "PERSISTENCE"         // 500
)

// Degraded replies stored as the assistant turn when the model call fails.
const (
	ReplyUpstreamAuth      = "(외부 API 인증 오류)"
	ReplyUpstreamRateLimit = "(외부 API 사용량 초과/속도 제한)"
	ReplyUpstream          = "(외부 API 오류)"
	ReplyUpstreamMalformed = "(API 응답 파싱 실패: 응답 구조가 예상과 다릅니다)"
	ReplyMissingAPIKey     = "(서버 설정 오류: API 키 없음)"
	ReplyInternal          = "(서버 내부 오류로 응답 실패)"
)

// Error is a classified failure with the HTTP status it maps to.
// Reply is set for upstream failures and holds the user-facing text.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Reply   string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidation(msg string) *Error {
	return &Error{Code: ErrInvalidRequest, Status: http.StatusBadRequest, Message: msg}
}

func NewUnauthorized() *Error {
	return &Error{Code: ErrUnauthorized, Status: http.StatusUnauthorized, Message: "인증 실패"}
}

// NewSessionNotFound is returned both for missing sessions and for sessions
// owned by someone else.
func NewSessionNotFound(sessionID int64) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  http.StatusNotFound,
		Message: "세션을 찾을 수 없습니다.",
		Details: map[string]any{"sessionId": sessionID},
	}
}

func NewConflict(msg string) *Error {
	return &Error{Code: ErrConflict, Status: http.StatusConflict, Message: msg}
}

func NewUpstreamAuth(status int) *Error {
	return &Error{
		Code:    ErrUpstreamAuth,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("upstream rejected credentials (http %d)", status),
		Reply:   ReplyUpstreamAuth,
	}
}

func NewUpstreamRateLimit() *Error {
	return &Error{
		Code:    ErrUpstreamRateLimit,
		Status:  http.StatusBadGateway,
		Message: "upstream rate limit exceeded",
		Reply:   ReplyUpstreamRateLimit,
	}
}

func NewUpstream(msg string, cause error) *Error {
	return &Error{
		Code:    ErrUpstream,
		Status:  http.StatusBadGateway,
		Message: msg,
		Reply:   ReplyUpstream,
		cause:   cause,
	}
}

func NewMissingAPIKey() *Error {
	return &Error{
		Code:    ErrUpstream,
		Status:  http.StatusBadGateway,
		Message: "api key is not configured",
		Reply:   ReplyMissingAPIKey,
	}
}

func NewUpstreamMalformed(cause error) *Error {
	return &Error{
		Code:    ErrUpstreamMalformed,
		Status:  http.StatusBadGateway,
		Message: "no answer text in upstream response",
		Reply:   ReplyUpstreamMalformed,
		cause:   cause,
	}
}

func NewPersistence(op string, cause error) *Error {
	return &Error{
		Code:    ErrPersistence,
		Status:  http.StatusInternalServerError,
		Message: op,
		cause:   cause,
	}
}

// AsError extracts a classified error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsUpstream reports whether err came from the model service.
func IsUpstream(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	switch e.Code {
	case ErrUpstreamAuth, ErrUpstreamRateLimit, ErrUpstream, ErrUpstreamMalformed:
		return true
	}
	return false
}

// StatusOf maps any error to an HTTP status; unclassified errors are 500.
func StatusOf(err error) int {
	if e, ok := AsError(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
