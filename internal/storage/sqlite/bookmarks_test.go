package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestBookmarksRepo_AddDedupesNormalizedLink(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice", "alice@example.com")
	repo := NewBookmarksRepo(db)

	_, err := repo.Add(ctx, core.Bookmark{
		UserID: alice.ID,
		Title:  "청년 월세 지원",
		Link:   "https://www.gov.kr/portal/service/123/",
	})
	require.NoError(t, err)

	_, err = repo.Add(ctx, core.Bookmark{
		UserID: alice.ID,
		Title:  "청년 월세 지원",
		Link:   "https://WWW.gov.kr/portal/service/123?utm_source=naver#top",
	})
	assert.True(t, core.IsCode(err, core.ErrConflict))

	_, err = repo.Add(ctx, core.Bookmark{UserID: alice.ID, Title: " "})
	assert.True(t, core.IsCode(err, core.ErrInvalidRequest))
}

func TestBookmarksRepo_DueForReminder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice", "alice@example.com")
	noMail := newTestUser(t, db, "nomail", "")
	repo := NewBookmarksRepo(db)

	today := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	d7 := date(2026, 3, 8)

	due, err := repo.Add(ctx, core.Bookmark{UserID: alice.ID, Title: "due", Link: "https://www.gov.kr/a", Deadline: d7, NotificationEnabled: true})
	require.NoError(t, err)

	fixtures := []core.Bookmark{
		{UserID: alice.ID, Title: "disabled", Deadline: d7, NotificationEnabled: false},
		{UserID: alice.ID, Title: "already notified", Deadline: d7, NotificationEnabled: true, NotifiedD7: true},
		{UserID: alice.ID, Title: "d-6", Deadline: date(2026, 3, 7), NotificationEnabled: true},
		{UserID: alice.ID, Title: "no deadline", NotificationEnabled: true},
		{UserID: noMail.ID, Title: "no email", Deadline: d7, NotificationEnabled: true},
	}
	for _, b := range fixtures {
		_, err := repo.Add(ctx, b)
		require.NoError(t, err, b.Title)
	}

	items, err := repo.DueForReminder(ctx, today, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, due.ID, items[0].BookmarkID)
	assert.Equal(t, "alice@example.com", items[0].Email)
	assert.Equal(t, "2026-03-08", items[0].Deadline.Format(dateLayout))

	require.NoError(t, repo.MarkNotified(ctx, due.ID))

	items, err = repo.DueForReminder(ctx, today, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBookmarksRepo_DueForReminderIgnoresMalformedDeadlines(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice", "alice@example.com")
	repo := NewBookmarksRepo(db)

	for _, raw := range []string{"2026/03/08", "2026-3-8", "next week"} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO bookmarks (user_id, title, link, link_key, deadline, notification_enabled, notified_d7, created_at)
			 VALUES (?, ?, '', '', ?, 1, 0, 0)`,
			alice.ID, "legacy "+raw, raw,
		)
		require.NoError(t, err)
	}

	due, err := repo.Add(ctx, core.Bookmark{UserID: alice.ID, Title: "due", Deadline: date(2026, 3, 8), NotificationEnabled: true})
	require.NoError(t, err)

	items, err := repo.DueForReminder(ctx, time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, due.ID, items[0].BookmarkID)
	assert.Equal(t, "2026-03-08", items[0].Deadline.Format(dateLayout))
}
