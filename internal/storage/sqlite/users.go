package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bokjirang/policybot/internal/core"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

// ByUsername resolves the caller of a member request by username or
// e-mail address. A username match wins over another user's e-mail.
// Unknown users are reported as unauthorized, not as missing.
func (r *UsersRepo) ByUsername(ctx context.Context, username string) (core.User, error) {
	username = strings.TrimSpace(username)

	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email FROM users
		 WHERE username = ? OR (email <> '' AND email = ?)
		 ORDER BY username = ? DESC, id
		 LIMIT 1`,
		username, username, username,
	).Scan(&u.ID, &u.Username, &u.Email)

	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NewUnauthorized()
	}
	if err != nil {
		return core.User{}, core.NewPersistence("query user", err)
	}
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, username, email string) (core.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, core.NewValidation("username은 필수입니다.")
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, created_at) VALUES (?, ?, ?)`,
		username, strings.TrimSpace(email), toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.NewConflict("이미 존재하는 사용자입니다.")
		}
		return core.User{}, core.NewPersistence("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, core.NewPersistence("insert user", err)
	}
	return core.User{ID: id, Username: username, Email: strings.TrimSpace(email)}, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
