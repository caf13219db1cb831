package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"birdfinder/internal/domain"
	"birdfinder/internal/repository"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	user_id INTEGER NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id)
);
`

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	now := time.Now().UTC()
	session.CreatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (token, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?)`,
		session.Token,
		session.UserID,
		now,
		now,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return fmt.Errorf("insert session for user %d: %w", session.UserID, repository.ErrReferenceMissing)
		case isUniqueViolation(err):
			return fmt.Errorf("insert session: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) UserID(ctx context.Context, token string) (int64, error) {
	var userID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM sessions WHERE token = ?`, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("session: %w", repository.ErrNotFound)
		}
		return 0, fmt.Errorf("query session: %w", err)
	}
	if !userID.Valid {
		return 0, fmt.Errorf("session user: %w", repository.ErrNotFound)
	}
	return userID.Int64, nil
}

func (r *SessionRepository) ClearUser(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE sessions SET user_id = NULL, updated_at = ?
WHERE token = ?`,
		time.Now().UTC(),
		token,
	)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
