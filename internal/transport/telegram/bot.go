package telegram

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/command"
	"github.com/bokjirang/policybot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const (
	welcomeText = "안녕하세요, " + core.BokjiName + "입니다. 궁금한 정부 지원 정책을 물어보세요.\n/help 로 명령어를 볼 수 있습니다."
	failureText = "답변을 만들지 못했습니다. 잠시 후 다시 시도해 주세요."
)

// Bot answers every allowed chat as a guest. Each chat keeps one session
// until /new is sent.
type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	chat     *chat.Service
	commands *command.Router
	sender   *sender

	mu       sync.Mutex
	sessions map[int64]int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	chatSvc *chat.Service,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		chat:     chatSvc,
		commands: command.New(command.NewChatCommands(chatSvc)...),
		sender:   newSender(b),
		sessions: make(map[int64]int64),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Chat() == nil || !cfg.IsAllowed(c.Chat().ID) {
				return nil
			}
			return next(c)
		}
	})

	// other slash commands arrive as text and go through the router
	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(welcomeText)
}

func (b *Bot) handleMessage(c tele.Context) error {
	chatID := c.Chat().ID
	ctx := log.WithFields(c.Get(baseContextKey).(context.Context), "chat", strconv.FormatInt(chatID, 10))
	logger := log.FromCtx(ctx)

	if out, ok := b.commands.Execute(ctx, conversation{bot: b, chatID: chatID}, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Recipient(), out)
	}

	_ = c.Notify(tele.Typing)

	resp, err := b.chat.Ask(ctx, chat.Request{
		SessionID: b.session(chatID),
		Message:   c.Text(),
	})
	if resp != nil {
		b.remember(chatID, resp.SessionID)
	}
	if err != nil && (resp == nil || !core.IsUpstream(err)) {
		logger.Error().Err(err).Msg("chat request failed")
		return c.Send(failureText)
	}

	return b.sender.sendMarkdown(ctx, c.Recipient(), resp.Markdown())
}

func (b *Bot) session(chatID int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) remember(chatID, sessionID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[chatID] = sessionID
}

func (b *Bot) forget(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, chatID)
}

// conversation adapts one chat to the command router.
type conversation struct {
	bot    *Bot
	chatID int64
}

func (c conversation) Owner() string    { return "" }
func (c conversation) SessionID() int64 { return c.bot.session(c.chatID) }
func (c conversation) Reset()           { c.bot.forget(c.chatID) }
