package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotifier_Unconfigured(t *testing.T) {
	n := NewNotifier(context.Background(), &config.MailConfig{Port: 587})

	err := n.Send(context.Background(), core.Notification{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSMTP_Build(t *testing.T) {
	s := NewSMTP(&config.MailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@bokjirang.kr"})

	msg, err := s.build(core.Notification{
		To:      "alice@example.com",
		Subject: "신청 마감 7일 전: 청년 월세 지원",
		HTML:    "<h2>📢 신청 마감 7일 전 알림</h2><p>청년 월세 지원</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "text/plain")
}

func TestSMTP_BuildRejectsBadAddress(t *testing.T) {
	s := NewSMTP(&config.MailConfig{Host: "smtp.example.com", From: "noreply@bokjirang.kr"})

	_, err := s.build(core.Notification{To: "not an address"})
	assert.Error(t, err)
}

func TestSMTP_ClientOptions(t *testing.T) {
	anon := NewSMTP(&config.MailConfig{Host: "h", Port: 25, From: "a@b.c"})
	assert.Len(t, anon.clientOptions(), 2)

	auth := NewSMTP(&config.MailConfig{Host: "h", Port: 587, From: "a@b.c", Username: "u", Password: "p"})
	assert.Len(t, auth.clientOptions(), 5)
}
