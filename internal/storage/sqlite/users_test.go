package sqlite

import (
	"context"
	"testing"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_ByUsername(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUsersRepo(db)

	alice := newTestUser(t, db, "alice", "alice@example.com")
	// a username that is someone else's address
	tricky := newTestUser(t, db, "alice@example.com", "other@example.com")
	noMail := newTestUser(t, db, "nomail", "")

	tests := []struct {
		name    string
		owner   string
		wantID  int64
		wantErr core.ErrorCode
	}{
		{name: "by username", owner: "alice", wantID: alice.ID},
		{name: "trimmed", owner: "  alice ", wantID: alice.ID},
		{name: "by email", owner: "other@example.com", wantID: tricky.ID},
		{name: "username beats email", owner: "alice@example.com", wantID: tricky.ID},
		{name: "user without email", owner: "nomail", wantID: noMail.ID},
		{name: "empty never matches blank email", owner: "", wantErr: core.ErrUnauthorized},
		{name: "unknown", owner: "ghost", wantErr: core.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := repo.ByUsername(ctx, tt.owner)
			if tt.wantErr != "" {
				assert.True(t, core.IsCode(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestUsersRepo_CreateConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo(newTestDB(t))

	_, err := repo.Create(ctx, "alice", "alice@example.com")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "alice", "")
	assert.True(t, core.IsCode(err, core.ErrConflict))

	_, err = repo.Create(ctx, " ", "x@example.com")
	assert.True(t, core.IsCode(err, core.ErrInvalidRequest))
}
