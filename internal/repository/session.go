package repository

import (
	"context"

	"birdfinder/internal/domain"
)

// SessionRepository is the server-side backing store for login sessions.
type SessionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, session *domain.Session) error
	// UserID returns ErrNotFound for unknown tokens and for sessions whose
	// user binding has been cleared.
	UserID(ctx context.Context, token string) (int64, error)
	ClearUser(ctx context.Context, token string) error
}
