package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/log"
)

const (
	defaultSessionsLimit = 20
	maxSessionsLimit     = 100
)

// SessionStore is the member backend. Every statement is scoped by
// user_id so a caller can never read or write another user's session.
type SessionStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

func (s *SessionStore) ResolveOrCreate(ctx context.Context, owner, existingID int64, firstMessage string) (core.Session, error) {
	if owner <= 0 {
		return core.Session{}, core.NewUnauthorized()
	}

	if existingID > 0 {
		sess, err := s.get(ctx, existingID, owner)
		if err == nil {
			return sess, nil
		}
		if !core.IsCode(err, core.ErrNotFound) {
			return core.Session{}, err
		}
		log.FromCtx(ctx).Debug().
			Int64("session_id", existingID).
			Int64("owner", owner).
			Msg("session not found for owner, creating a new one")
	}

	now := s.now().UTC()
	sess := core.Session{
		OwnerID:   owner,
		Title:     core.DeriveTitle(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (user_id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		owner, sess.Title, toMillis(now), toMillis(now),
	)
	if err != nil {
		return core.Session{}, core.NewPersistence("insert session", err)
	}
	if sess.ID, err = res.LastInsertId(); err != nil {
		return core.Session{}, core.NewPersistence("insert session", err)
	}
	return sess, nil
}

func (s *SessionStore) Append(ctx context.Context, sessionID int64, msg core.Message) error {
	citations, err := encodeCitations(msg.Citations)
	if err != nil {
		return err
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.NewPersistence("begin append", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content, citations, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, citations, toMillis(createdAt),
	)
	if err != nil {
		return core.NewPersistence("insert message", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`,
		toMillis(createdAt), sessionID,
	)
	if err != nil {
		return core.NewPersistence("touch session", err)
	}

	if err := tx.Commit(); err != nil {
		return core.NewPersistence("commit append", err)
	}
	return nil
}

func (s *SessionStore) List(ctx context.Context, sessionID, owner int64) ([]core.Message, error) {
	if _, err := s.get(ctx, sessionID, owner); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, citations, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, core.NewPersistence("query messages", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (s *SessionStore) Recent(ctx context.Context, sessionID int64, limit int) ([]core.Message, error) {
	// Fetch the LAST 'limit' messages by ordering DESC
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, citations, created_at
		 FROM chat_messages WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, core.NewPersistence("query recent messages", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Back to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded history messages")
	return messages, nil
}

func (s *SessionStore) ListSessions(ctx context.Context, owner int64, limit int) ([]core.Session, error) {
	if owner <= 0 {
		return nil, core.NewUnauthorized()
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM chat_sessions WHERE user_id = ? ORDER BY updated_at DESC, id DESC LIMIT ?`,
		owner, clampLimit(limit),
	)
	if err != nil {
		return nil, core.NewPersistence("query sessions", err)
	}
	defer rows.Close()

	sessions := make([]core.Session, 0)
	for rows.Next() {
		var sess core.Session
		var created, updated int64
		if err := rows.Scan(&sess.ID, &sess.OwnerID, &sess.Title, &created, &updated); err != nil {
			return nil, core.NewPersistence("scan session", err)
		}
		sess.CreatedAt = fromMillis(created)
		sess.UpdatedAt = fromMillis(updated)
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewPersistence("iterate sessions", err)
	}
	return sessions, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID, owner int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`,
		sessionID, owner,
	)
	if err != nil {
		return core.NewPersistence("delete session", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return core.NewPersistence("delete session", err)
	}
	if n == 0 {
		return core.NewSessionNotFound(sessionID)
	}
	return nil
}

func (s *SessionStore) get(ctx context.Context, sessionID, owner int64) (core.Session, error) {
	var sess core.Session
	var created, updated int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM chat_sessions WHERE id = ? AND user_id = ?`,
		sessionID, owner,
	).Scan(&sess.ID, &sess.OwnerID, &sess.Title, &created, &updated)

	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, core.NewSessionNotFound(sessionID)
	}
	if err != nil {
		return core.Session{}, core.NewPersistence("query session", err)
	}

	sess.CreatedAt = fromMillis(created)
	sess.UpdatedAt = fromMillis(updated)
	return sess, nil
}

func scanMessages(rows *sql.Rows) ([]core.Message, error) {
	messages := make([]core.Message, 0)
	for rows.Next() {
		var msg core.Message
		var citations string
		var created int64

		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &citations, &created); err != nil {
			return nil, core.NewPersistence("scan message", err)
		}
		msg.CreatedAt = fromMillis(created)

		if citations != "" {
			if err := json.Unmarshal([]byte(citations), &msg.Citations); err != nil {
				return nil, core.NewPersistence("decode citations", err)
			}
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, core.NewPersistence("iterate messages", err)
	}
	return messages, nil
}

// encodeCitations stores an empty list as an empty string to save space.
func encodeCitations(citations []string) (string, error) {
	if len(citations) == 0 {
		return "", nil
	}
	data, err := json.Marshal(citations)
	if err != nil {
		return "", fmt.Errorf("failed to marshal citations: %w", err)
	}
	return string(data), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSessionsLimit
	}
	if limit > maxSessionsLimit {
		return maxSessionsLimit
	}
	return limit
}
