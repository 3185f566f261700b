package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/bokjirang/policybot/pkg/urlnorm"
)

const dateLayout = "2006-01-02"

type BookmarksRepo struct {
	db *sql.DB
}

func NewBookmarksRepo(db *sql.DB) *BookmarksRepo {
	return &BookmarksRepo{db: db}
}

// Add saves a bookmark. The same (user, title, normalized link) can only
// be saved once.
func (r *BookmarksRepo) Add(ctx context.Context, b core.Bookmark) (core.Bookmark, error) {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return core.Bookmark{}, core.NewValidation("title은 필수입니다.")
	}
	b.Link = strings.TrimSpace(b.Link)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	var deadline sql.NullString
	if b.Deadline != nil {
		deadline = sql.NullString{String: b.Deadline.Format(dateLayout), Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, title, link, link_key, deadline, notification_enabled, notified_d7, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Title, b.Link, urlnorm.Normalize(b.Link), deadline,
		boolToInt(b.NotificationEnabled), boolToInt(b.NotifiedD7), toMillis(b.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Bookmark{}, core.NewConflict("이미 즐겨찾기에 추가된 정책입니다.")
		}
		return core.Bookmark{}, core.NewPersistence("insert bookmark", err)
	}

	if b.ID, err = res.LastInsertId(); err != nil {
		return core.Bookmark{}, core.NewPersistence("insert bookmark", err)
	}
	return b, nil
}

// DueForReminder returns, across all users, the bookmarks whose deadline is
// exactly daysBefore days after today and which were not notified yet.
// Every returned row carries the target date as its deadline.
func (r *BookmarksRepo) DueForReminder(ctx context.Context, today time.Time, daysBefore int) ([]core.ReminderItem, error) {
	due := today.AddDate(0, 0, daysBefore)
	target := due.Format(dateLayout)
	deadline := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.user_id, u.email, b.title, b.link
		 FROM bookmarks b
		 JOIN users u ON u.id = b.user_id
		 WHERE b.notification_enabled = 1
		   AND b.deadline IS NOT NULL
		   AND b.deadline = ?
		   AND b.notified_d7 = 0
		   AND u.email <> ''
		 ORDER BY b.id`,
		target,
	)
	if err != nil {
		return nil, core.NewPersistence("query due reminders", err)
	}
	defer rows.Close()

	var items []core.ReminderItem
	for rows.Next() {
		item := core.ReminderItem{Deadline: deadline}
		if err := rows.Scan(&item.BookmarkID, &item.UserID, &item.Email, &item.Title, &item.Link); err != nil {
			return nil, core.NewPersistence("scan reminder", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewPersistence("iterate reminders", err)
	}
	return items, nil
}

// MarkNotified flips notified_d7 once. The flag is never reset.
func (r *BookmarksRepo) MarkNotified(ctx context.Context, bookmarkID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookmarks SET notified_d7 = 1 WHERE id = ? AND notified_d7 = 0`,
		bookmarkID,
	)
	if err != nil {
		return core.NewPersistence("mark notified", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
