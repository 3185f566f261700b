package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
		upstream   bool
	}{
		{"validation", NewValidation("message는 필수입니다."), ErrInvalidRequest, http.StatusBadRequest, false},
		{"unauthorized", NewUnauthorized(), ErrUnauthorized, http.StatusUnauthorized, false},
		{"not found", NewSessionNotFound(7), ErrNotFound, http.StatusNotFound, false},
		{"upstream auth", NewUpstreamAuth(403), ErrUpstreamAuth, http.StatusBadGateway, true},
		{"rate limit", NewUpstreamRateLimit(), ErrUpstreamRateLimit, http.StatusBadGateway, true},
		{"malformed", NewUpstreamMalformed(nil), ErrUpstreamMalformed, http.StatusBadGateway, true},
		{"persistence wrapped", fmt.Errorf("append: %w", NewPersistence("insert", errors.New("disk"))), ErrPersistence, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsCode(tt.err, tt.wantCode))
			assert.Equal(t, tt.wantStatus, StatusOf(tt.err))
			assert.Equal(t, tt.upstream, IsUpstream(tt.err))
		})
	}
}

func TestStatusOf_Unclassified(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
	assert.False(t, IsUpstream(errors.New("boom")))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstream("request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ReplyUpstream, err.Reply)
	assert.Contains(t, err.Error(), "connection refused")
}
