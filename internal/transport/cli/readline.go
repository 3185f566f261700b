package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/chat"
	"github.com/bokjirang/policybot/internal/service/command"
	"github.com/bokjirang/policybot/pkg/log"
	"github.com/chzyer/readline"
)

const cmdExit = "exit"

// ReadLine is a terminal chat against one session at a time.
type ReadLine struct {
	cfg       *config.AppConfig
	chat      *chat.Service
	commands  *command.Router
	rl        *readline.Instance
	owner     string
	sessionID int64
}

// NewReadLine opens the prompt. A non-empty owner chats as that member.
func NewReadLine(chatSvc *chat.Service, cfg *config.AppConfig, owner string) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "질문> ",
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       cmdExit,
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		chat:     chatSvc,
		commands: command.New(command.NewChatCommands(chatSvc)...),
		rl:       rl,
		owner:    owner,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	fmt.Fprintf(r.rl.Stdout(), "%s 터미널 상담입니다. '%s'로 종료, '/help'로 명령어 보기.\n", core.BokjiName, cmdExit)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case cmdExit:
			return nil
		}

		if out, ok := r.commands.Execute(ctx, r, line); ok {
			fmt.Fprintln(r.rl.Stdout(), out)
			continue
		}

		resp, err := r.chat.Ask(ctx, chat.Request{
			Owner:     r.owner,
			SessionID: r.sessionID,
			Message:   line,
		})
		if resp != nil {
			r.sessionID = resp.SessionID
		}
		if err != nil && (resp == nil || !core.IsUpstream(err)) {
			logger.Error().Err(err).Msg("chat request failed")
			fmt.Fprintf(r.rl.Stdout(), "오류: %v\n", err)
			continue
		}

		fmt.Fprintf(r.rl.Stdout(), "%s\n\n", render(resp))
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func (r *ReadLine) Owner() string    { return r.owner }
func (r *ReadLine) SessionID() int64 { return r.sessionID }
func (r *ReadLine) Reset()           { r.sessionID = 0 }
