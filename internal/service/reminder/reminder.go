// Package reminder sends the D-7 deadline notification for bookmarked
// policies, at most once per bookmark.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/bokjirang/policybot/pkg/retry"
	"github.com/qmuntal/stateless"
	cronlib "github.com/robfig/cron/v3"
)

const (
	dateLayout      = "2006-01-02"
	shutdownTimeout = 10 * time.Second
)

var ErrStopped = errors.New("reminder scheduler stopped")

// Delivery states of one item within a cycle.
const (
	StatePending = "pending"
	StateSent    = "sent"
)

const (
	triggerSendOK     = "send_ok"
	triggerSendFailed = "send_failed"
)

type Report struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Scheduler struct {
	cfg      *config.ReminderConfig
	repo     core.BookmarkRepository
	notifier core.Notifier
	loc      *time.Location
	now      func() time.Time

	// markRetry bounds the flag update after a delivered mail
	markRetry *retry.Config

	// one cycle at a time, cron, start-up or manual
	runMu   sync.Mutex
	stopped bool
	cron    *cronlib.Cron
}

func NewScheduler(
	cfg *config.ReminderConfig,
	repo core.BookmarkRepository,
	notifier core.Notifier,
	loc *time.Location,
) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cfg:       cfg,
		repo:      repo,
		notifier:  notifier,
		loc:       loc,
		now:       time.Now,
		markRetry: markRetryConfig(),
		cron:      cronlib.New(cronlib.WithLocation(loc)),
	}
}

func markRetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:    2,
		BackoffFactor: 2,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		Jitter:        20 * time.Millisecond,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "reminder").Logger()

	if !s.cfg.Enabled {
		logger.Info().Msg("reminder scheduler disabled")
		return nil
	}

	ctx = logger.WithContext(ctx)
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.runLogged(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()

	logger.Info().Str("schedule", s.cfg.Schedule).Msg("reminder scheduler started")

	if s.cfg.RunOnStart {
		s.runLogged(ctx)
	}
	return nil
}

// Shutdown stops the cron entries and waits for a running cycle, including
// the start-up one, before the database is closed.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.runMu.Lock()
		s.stopped = true
		s.runMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.FromCtx(ctx).Warn().Msg("reminder cycle still running at shutdown")
	}
	return nil
}

func (s *Scheduler) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("reminder cycle failed")
	}
}

// RunOnce processes every eligible item. Per-item failures are counted and
// logged; only a failed lookup is returned as an error.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopped {
		return Report{}, ErrStopped
	}

	logger := log.FromCtx(ctx)

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	items, err := s.repo.DueForReminder(ctx, today, s.cfg.DaysBefore)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load reminder items: %w", err)
	}

	var report Report
	for _, item := range items {
		if err := s.deliver(ctx, item); err != nil {
			report.Failed++
			logger.Warn().
				Err(err).
				Int64("bookmark_id", item.BookmarkID).
				Msg("reminder not delivered, will retry next cycle")
			continue
		}
		report.Sent++
	}

	logger.Info().
		Str("date", today.Format(dateLayout)).
		Int("eligible", len(items)).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Msg("reminder cycle finished")

	return report, nil
}

// deliver walks one item through PENDING -> SENT. The flag is written on
// entry to SENT, so it is never set for a failed send.
func (s *Scheduler) deliver(ctx context.Context, item core.ReminderItem) error {
	fsm := newDeliveryFSM(func(ctx context.Context) error {
		return retry.NewRetrier(s.markRetry).Do(ctx, func() error {
			return s.repo.MarkNotified(ctx, item.BookmarkID)
		})
	})

	msg, err := Render(item)
	if err != nil {
		_ = fsm.FireCtx(ctx, triggerSendFailed)
		return err
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		_ = fsm.FireCtx(ctx, triggerSendFailed)
		return fmt.Errorf("send failed: %w", err)
	}

	if err := fsm.FireCtx(ctx, triggerSendOK); err != nil {
		log.FromCtx(ctx).Error().
			Err(err).
			Int64("bookmark_id", item.BookmarkID).
			Str("to", item.Email).
			Msg("reminder mailed but not marked, it may be sent again")
		return fmt.Errorf("failed to mark notified: %w", err)
	}
	return nil
}

func newDeliveryFSM(markNotified func(ctx context.Context) error) *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StatePending)

	fsm.Configure(StatePending).
		Permit(triggerSendOK, StateSent).
		PermitReentry(triggerSendFailed)

	fsm.Configure(StateSent).
		OnEntry(func(ctx context.Context, args ...any) error {
			return markNotified(ctx)
		})

	return fsm
}
