package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/intent"
)

// MessageLister reads the current session.
type MessageLister interface {
	Messages(ctx context.Context, ownerName string, sessionID int64) ([]core.Message, error)
}

// NewChatCommands returns the commands shared by the chat transports.
func NewChatCommands(messages MessageLister) []Command {
	return []Command{
		NewCommand{},
		HistoryCommand{messages: messages},
		ExplainCommand{},
	}
}

// NewCommand starts a fresh session on the next question.
type NewCommand struct{}

func (NewCommand) Name() string        { return "new" }
func (NewCommand) Description() string { return "새 대화 시작" }

func (NewCommand) Execute(_ context.Context, conv Conversation, _ []string) (string, error) {
	conv.Reset()
	return NewResponseFormatter().Success("새 대화를 시작합니다."), nil
}

// HistoryCommand lists the questions asked in the current session.
type HistoryCommand struct {
	messages MessageLister
}

func (HistoryCommand) Name() string        { return "history" }
func (HistoryCommand) Description() string { return "이번 대화에서 한 질문" }

func (c HistoryCommand) Execute(ctx context.Context, conv Conversation, _ []string) (string, error) {
	f := NewResponseFormatter()
	if conv.SessionID() == 0 {
		return f.Tip("아직 대화가 없습니다."), nil
	}

	msgs, err := c.messages.Messages(ctx, conv.Owner(), conv.SessionID())
	if err != nil {
		return "", err
	}

	var questions []string
	for _, m := range msgs {
		if m.Role == core.RoleUser {
			questions = append(questions, core.DeriveTitle(m.Content))
		}
	}
	if len(questions) == 0 {
		return f.Tip("아직 대화가 없습니다."), nil
	}
	return f.Combine(f.Info(fmt.Sprintf("질문 %d개", len(questions))), f.List(questions)), nil
}

// ExplainCommand shows how a question would be answered without asking
// the model.
type ExplainCommand struct{}

func (ExplainCommand) Name() string        { return "explain" }
func (ExplainCommand) Description() string { return "질문의 답변 형식(카드/설명) 확인" }

func (ExplainCommand) Execute(_ context.Context, _ Conversation, args []string) (string, error) {
	f := NewResponseFormatter()
	question := strings.Join(args, " ")
	if question == "" {
		return f.Usage("/explain <질문>"), nil
	}
	return f.Combine(
		f.Label("mode", string(intent.Classify(question))),
		f.Label("rule", intent.Explain(question)),
	), nil
}
