// Package memory builds the bounded history that is replayed to the model.
package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/bokjirang/policybot/internal/config"
	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/extract"
	"github.com/bokjirang/policybot/pkg/log"
)

// HistorySource is the part of a session store the compactor reads.
type HistorySource interface {
	Recent(ctx context.Context, sessionID int64, limit int) ([]core.Message, error)
}

type Compactor struct {
	cfg   *config.HistoryConfig
	count TokenCounter
}

func NewCompactor(cfg *config.HistoryConfig, count TokenCounter) *Compactor {
	if count == nil {
		count = NewTokenCounter(cfg.Encoding)
	}
	return &Compactor{cfg: cfg, count: count}
}

// Build returns the turns for one request, ending with the current user
// question. Caller history wins over the store; a store read failure
// degrades to the current turn alone.
func (c *Compactor) Build(
	ctx context.Context,
	src HistorySource,
	sessionID int64,
	caller []core.CompactTurn,
	current string,
) []core.Turn {
	logger := log.FromCtx(ctx)

	var history []core.Turn
	source := "none"

	switch {
	case len(caller) > 0:
		source = "caller"
		history = c.fromCaller(caller)
	case src != nil && sessionID > 0:
		msgs, err := src.Recent(ctx, sessionID, c.cfg.StoreTurns)
		if err != nil {
			logger.Warn().Err(err).Int64("session_id", sessionID).Msg("failed to load history, continuing without it")
			break
		}
		source = "store"
		history = fromMessages(msgs)
	}

	turns := c.fit(history, core.Turn{Role: core.RoleUser, Content: current})

	logger.Debug().
		Str("source", source).
		Int("turns", len(turns)).
		Msg("history compacted")

	return turns
}

func (c *Compactor) fromCaller(caller []core.CompactTurn) []core.Turn {
	if n := c.cfg.CallerTurns; n > 0 && len(caller) > n {
		caller = caller[len(caller)-n:]
	}

	turns := make([]core.Turn, 0, len(caller))
	for _, ct := range caller {
		role := normalizeRole(ct.Role)
		if role == "" {
			continue
		}

		content := ct.Content
		if ct.Card != nil {
			content = Flatten(ct.Card)
		} else if role == core.RoleAssistant {
			content = flattenIfCard(content)
		}

		if strings.TrimSpace(content) == "" {
			continue
		}
		turns = append(turns, core.Turn{Role: role, Content: content})
	}
	return turns
}

func fromMessages(msgs []core.Message) []core.Turn {
	turns := make([]core.Turn, 0, len(msgs))
	for _, m := range msgs {
		content := m.Content
		if m.Role == core.RoleAssistant {
			content = flattenIfCard(content)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		turns = append(turns, core.Turn{Role: m.Role, Content: content})
	}
	return turns
}

// fit drops the oldest turns until history plus the current turn fits the
// token budget, then merges same-role neighbours so roles alternate and
// the list starts with a user turn.
func (c *Compactor) fit(history []core.Turn, current core.Turn) []core.Turn {
	budget := c.cfg.TokenBudget - c.count(current.Content)

	start := len(history)
	if c.cfg.TokenBudget <= 0 {
		start = 0
	} else {
		used := 0
		for i := len(history) - 1; i >= 0; i-- {
			used += c.count(history[i].Content)
			if used > budget {
				break
			}
			start = i
		}
	}

	turns := make([]core.Turn, 0, len(history)-start+1)
	turns = append(turns, history[start:]...)
	turns = append(turns, current)

	return alternate(turns)
}

func alternate(turns []core.Turn) []core.Turn {
	for len(turns) > 0 && turns[0].Role != core.RoleUser {
		turns = turns[1:]
	}

	out := make([]core.Turn, 0, len(turns))
	for _, t := range turns {
		if n := len(out); n > 0 && out[n-1].Role == t.Role {
			out[n-1].Content += "\n\n" + t.Content
			continue
		}
		out = append(out, t)
	}
	return out
}

// Flatten renders a card as the one-line summary kept in history.
func Flatten(p *core.ExtractedPolicy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[정책] %s", orNoInfo(p.Title))

	fields := []struct{ label, value string }{
		{"대상", p.Target},
		{"지원", p.Support},
		{"방법", p.Method},
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " / %s: %s", f.label, orNoInfo(f.value))
	}
	return b.String()
}

func flattenIfCard(content string) string {
	if p, ok := extract.ParsePolicy(content); ok {
		return Flatten(p)
	}
	return content
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case core.RoleUser:
		return core.RoleUser
	case core.RoleAssistant, "bot", "model":
		return core.RoleAssistant
	default:
		return ""
	}
}

func orNoInfo(s string) string {
	if strings.TrimSpace(s) == "" {
		return core.NoInfo
	}
	return s
}
