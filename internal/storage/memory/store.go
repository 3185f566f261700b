package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bokjirang/policybot/internal/core"
)

type guestSession struct {
	session  core.Session
	messages []core.Message
}

// Store keeps guest sessions for the lifetime of the process. Nothing is
// persisted; a restart drops every guest conversation.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*guestSession
	lastID   int64
	lastMsg  int64
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*guestSession),
		now:      time.Now,
	}
}

func (s *Store) ResolveOrCreate(ctx context.Context, owner, existingID int64, firstMessage string) (core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID > 0 {
		if gs, ok := s.sessions[existingID]; ok {
			return gs.session, nil
		}
	}

	now := s.now().UTC()
	sess := core.Session{
		ID:        s.nextID(now),
		Title:     core.DeriveTitle(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = &guestSession{session: sess}
	return sess, nil
}

func (s *Store) Append(ctx context.Context, sessionID int64, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs, ok := s.sessions[sessionID]
	if !ok {
		return core.NewSessionNotFound(sessionID)
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	s.lastMsg++
	msg.ID = s.lastMsg
	msg.SessionID = sessionID
	msg.Citations = cloneStrings(msg.Citations)

	gs.messages = append(gs.messages, msg)
	gs.session.UpdatedAt = msg.CreatedAt
	return nil
}

// List returns the session's messages. Guest sessions have no owner, so
// the owner argument is ignored.
func (s *Store) List(ctx context.Context, sessionID, owner int64) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gs, ok := s.sessions[sessionID]
	if !ok {
		return nil, core.NewSessionNotFound(sessionID)
	}
	return cloneMessages(gs.messages), nil
}

func (s *Store) Recent(ctx context.Context, sessionID int64, limit int) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gs, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	msgs := gs.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return cloneMessages(msgs), nil
}

func (s *Store) ListSessions(ctx context.Context, owner int64, limit int) ([]core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]core.Session, 0, len(s.sessions))
	for _, gs := range s.sessions {
		sessions = append(sessions, gs.session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	if limit <= 0 {
		limit = 20
	}
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *Store) Delete(ctx context.Context, sessionID, owner int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return core.NewSessionNotFound(sessionID)
	}
	delete(s.sessions, sessionID)
	return nil
}

// nextID hands out millisecond timestamps, bumped to stay strictly
// increasing when two sessions start within the same millisecond.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func cloneMessages(msgs []core.Message) []core.Message {
	out := make([]core.Message, len(msgs))
	for i, m := range msgs {
		m.Citations = cloneStrings(m.Citations)
		out[i] = m
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
