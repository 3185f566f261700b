package core

import (
	"context"
	"time"
)

// SessionStore is implemented by the in-memory guest backend and the
// relational member backend. owner is zero for guests.
type SessionStore interface {
	ResolveOrCreate(ctx context.Context, owner, existingID int64, firstMessage string) (Session, error)
	Append(ctx context.Context, sessionID int64, msg Message) error
	List(ctx context.Context, sessionID, owner int64) ([]Message, error)
	Recent(ctx context.Context, sessionID int64, limit int) ([]Message, error)
	ListSessions(ctx context.Context, owner int64, limit int) ([]Session, error)
	Delete(ctx context.Context, sessionID, owner int64) error
}

type UserRepository interface {
	ByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, username, email string) (User, error)
}

type BookmarkRepository interface {
	Add(ctx context.Context, b Bookmark) (Bookmark, error)
	DueForReminder(ctx context.Context, today time.Time, daysBefore int) ([]ReminderItem, error)
	MarkNotified(ctx context.Context, bookmarkID int64) error
}
