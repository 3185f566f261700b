// Package chat runs one question through the session store, the model
// relay and the extraction pipeline.
package chat

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/internal/service/extract"
	"github.com/bokjirang/policybot/internal/service/intent"
	"github.com/bokjirang/policybot/internal/service/memory"
	"github.com/bokjirang/policybot/pkg/conv"
	"github.com/bokjirang/policybot/pkg/log"
)

// cardInstruction is appended to the upstream copy of a card-mode question.
// It is never stored.
const cardInstruction = "\n\n아래 JSON 포맷으로 핵심 정보를 ```policy 코드 블록에 함께 담아 주세요. " +
	"모르는 항목은 \"" + core.NoInfo + "\"으로 적으세요.\n" +
	"{\"title\":\"\",\"target\":\"\",\"period\":\"\",\"support\":\"\",\"method\":\"\"," +
	"\"link\":{\"title\":\"\",\"url\":\"\"},\"category\":\"\"}"

type Request struct {
	Owner     string             `json:"owner,omitempty"`
	SessionID int64              `json:"sessionId,omitempty"`
	Message   string             `json:"message"`
	History   []core.CompactTurn `json:"history,omitempty"`
}

type Response struct {
	Reply     string                `json:"reply"`
	Citations []string              `json:"citations"`
	SessionID int64                 `json:"sessionId"`
	Mode      core.Mode             `json:"mode"`
	Policy    *core.ExtractedPolicy `json:"policy,omitempty"`
	Sources   []core.SourceRef      `json:"sources,omitempty"`
	ReplyHTML string                `json:"replyHtml,omitempty"`
}

type Service struct {
	guest      core.SessionStore
	member     core.SessionStore
	users      core.UserRepository
	relay      core.Relay
	compactor  *memory.Compactor
	renderHTML bool
	now        func() time.Time
}

func NewService(
	guest core.SessionStore,
	member core.SessionStore,
	users core.UserRepository,
	relay core.Relay,
	compactor *memory.Compactor,
	renderHTML bool,
) *Service {
	return &Service{
		guest:      guest,
		member:     member,
		users:      users,
		relay:      relay,
		compactor:  compactor,
		renderHTML: renderHTML,
		now:        time.Now,
	}
}

// Ask answers one question. When the relay fails the degraded reply is
// still stored and returned together with the classified error, so callers
// can render the payload with an upstream status.
func (s *Service) Ask(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, core.NewValidation("message는 필수입니다.")
	}

	store, owner, err := s.backend(ctx, req.Owner)
	if err != nil {
		return nil, err
	}

	session, err := store.ResolveOrCreate(ctx, owner, req.SessionID, message)
	if err != nil {
		return nil, err
	}

	ctx = log.WithFields(ctx, "session", strconv.FormatInt(session.ID, 10))
	logger := log.FromCtx(ctx)

	mode := intent.Classify(message)
	logger.Debug().
		Str("mode", string(mode)).
		Str("rule", intent.Explain(message)).
		Bool("guest", session.IsGuest()).
		Msg("question classified")

	// history is read before the new turn is stored
	upstreamQuestion := message
	if mode == core.ModeCard {
		upstreamQuestion += cardInstruction
	}
	turns := s.compactor.Build(ctx, store, session.ID, req.History, upstreamQuestion)

	if err := store.Append(ctx, session.ID, core.Message{
		Role:      core.RoleUser,
		Content:   message,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	completion, relayErr := s.relay.Complete(ctx, turns)
	if relayErr != nil {
		return s.degraded(ctx, store, session, relayErr)
	}

	resp := s.shape(session.ID, mode, completion)

	if err := store.Append(ctx, session.ID, core.Message{
		Role:      core.RoleAssistant,
		Content:   completion.Text,
		CreatedAt: s.now(),
		Citations: resp.Citations,
	}); err != nil {
		return nil, err
	}

	logger.Info().
		Str("mode", string(resp.Mode)).
		Int("citations", len(resp.Citations)).
		Msg("question answered")

	return resp, nil
}

func (s *Service) shape(sessionID int64, mode core.Mode, completion core.Completion) *Response {
	resp := &Response{
		SessionID: sessionID,
		Mode:      mode,
		Reply:     extract.StripArtifacts(completion.Text),
	}

	switch {
	case extract.IsRefusal(completion.Text):
		resp.Mode = core.ModeText
		resp.Reply = core.RefusalSentence
		resp.Sources = []core.SourceRef{}
	case mode == core.ModeCard:
		result := extract.Run(completion.Text, completion.Citations)
		resp.Policy = result.Policy
		resp.Sources = result.Sources
	default:
		resp.Sources = extract.Sources(completion.Text, completion.Citations)
	}
	resp.Citations = extract.SourceURLs(resp.Sources)

	if s.renderHTML {
		resp.ReplyHTML = conv.MarkdownToHTML(resp.Reply)
	}
	return resp
}

func (s *Service) degraded(
	ctx context.Context,
	store core.SessionStore,
	session core.Session,
	relayErr error,
) (*Response, error) {
	e, ok := core.AsError(relayErr)
	if !ok {
		e = core.NewUpstream("relay failed", relayErr)
	}

	log.FromCtx(ctx).Warn().Err(relayErr).Str("code", string(e.Code)).Msg("answering with degraded reply")

	if err := store.Append(ctx, session.ID, core.Message{
		Role:      core.RoleAssistant,
		Content:   e.Reply,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, err
	}

	return &Response{
		Reply:     e.Reply,
		Citations: []string{},
		SessionID: session.ID,
		Mode:      core.ModeText,
	}, e
}

// ListSessions returns the caller's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, ownerName string, limit int) ([]core.Session, error) {
	store, owner, err := s.backend(ctx, ownerName)
	if err != nil {
		return nil, err
	}
	return store.ListSessions(ctx, owner, limit)
}

func (s *Service) Messages(ctx context.Context, ownerName string, sessionID int64) ([]core.Message, error) {
	if sessionID <= 0 {
		return nil, core.NewValidation("sessionId는 필수입니다.")
	}
	store, owner, err := s.backend(ctx, ownerName)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, sessionID, owner)
}

func (s *Service) DeleteSession(ctx context.Context, ownerName string, sessionID int64) error {
	store, owner, err := s.backend(ctx, ownerName)
	if err != nil {
		return err
	}
	return store.Delete(ctx, sessionID, owner)
}

// backend picks the store for the caller. An empty owner is a guest.
func (s *Service) backend(ctx context.Context, ownerName string) (core.SessionStore, int64, error) {
	ownerName = strings.TrimSpace(ownerName)
	if ownerName == "" {
		return s.guest, 0, nil
	}
	if s.member == nil || s.users == nil {
		return nil, 0, core.NewUnauthorized()
	}

	user, err := s.users.ByUsername(ctx, ownerName)
	if err != nil {
		return nil, 0, err
	}
	return s.member, user.ID, nil
}
