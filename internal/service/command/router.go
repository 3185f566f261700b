// Package command handles slash commands typed into chat transports.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Conversation is the per-chat state commands can read or reset.
type Conversation interface {
	Owner() string
	SessionID() int64
	Reset()
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, conv Conversation, args []string) (string, error)
}

type Router struct {
	commands map[string]Command
	format   *ResponseFormatter
}

// New registers the commands plus a built-in /help.
func New(commands ...Command) *Router {
	r := &Router{
		commands: make(map[string]Command),
		format:   NewResponseFormatter(),
	}
	for _, cmd := range commands {
		r.commands[cmd.Name()] = cmd
	}
	r.commands["help"] = helpCommand{router: r}
	return r
}

// Execute runs input when it is a slash command. The bool is false for
// ordinary questions.
func (r *Router) Execute(ctx context.Context, conv Conversation, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	// telegram appends the bot name in groups: /new@bokjibot
	name, _, _ = strings.Cut(name, "@")
	args := parts[1:]

	cmd, ok := r.commands[name]
	if !ok {
		return r.format.Error(fmt.Errorf("알 수 없는 명령어입니다: /%s", name)), true
	}

	result, err := cmd.Execute(ctx, conv, args)
	if err != nil {
		return r.format.Error(err), true
	}
	return result, true
}

// ListCommands returns the registered commands sorted by name.
func (r *Router) ListCommands() []Command {
	res := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}

type helpCommand struct {
	router *Router
}

func (helpCommand) Name() string        { return "help" }
func (helpCommand) Description() string { return "명령어 목록" }

func (h helpCommand) Execute(context.Context, Conversation, []string) (string, error) {
	items := make([]string, 0, len(h.router.commands))
	for _, cmd := range h.router.ListCommands() {
		items = append(items, fmt.Sprintf("/%s  %s", cmd.Name(), cmd.Description()))
	}
	return h.router.format.Combine(
		h.router.format.Info("명령어"),
		h.router.format.List(items),
		h.router.format.Tip("명령어가 아닌 메시지는 모두 정책 질문으로 처리됩니다."),
	), nil
}
