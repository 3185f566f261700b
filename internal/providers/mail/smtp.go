package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/conv"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/bokjirang/policybot/pkg/retry"
	gomail "github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("mail transport is not configured")

// SMTP delivers notifications through the configured relay, opening a new
// connection per message.
type SMTP struct {
	cfg *config.MailConfig
}

func NewSMTP(cfg *config.MailConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

// NewNotifier returns the SMTP notifier, or one that always fails when no
// relay is configured so reminders stay pending.
func NewNotifier(ctx context.Context, cfg *config.MailConfig) core.Notifier {
	if !cfg.IsConfigured() {
		log.FromCtx(ctx).Warn().Msg("EMAIL_HOST is not set, reminders will not be delivered")
		return disabled{}
	}
	return NewSMTP(cfg)
}

func (s *SMTP) Send(ctx context.Context, n core.Notification) error {
	msg, err := s.build(n)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	err = retry.NewRetrier(retry.NewStartupConfig()).Do(ctx, func() error {
		return client.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("subject", n.Subject).Msg("mail sent")
	return nil
}

func (s *SMTP) build(n core.Notification) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := msg.To(n.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, n.HTML)
	msg.AddAlternativeString(gomail.TypeTextPlain, conv.HTMLToText(n.HTML))
	return msg, nil
}

func (s *SMTP) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

type disabled struct{}

func (disabled) Send(context.Context, core.Notification) error {
	return ErrNotConfigured
}
