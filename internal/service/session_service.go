package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"birdfinder/internal/domain"
	"birdfinder/internal/repository"
)

var (
	// ErrAuthFailure indicates that provided login credentials are incorrect.
	ErrAuthFailure = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, unknown or logged-out session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// SessionService issues and validates server-side login sessions.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	RequireAuthenticated(ctx context.Context, token string) (int64, error)
}

type sessionService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

func NewSessionService(users repository.UserRepository, sessions repository.SessionRepository) SessionService {
	return &sessionService{
		users:    users,
		sessions: sessions,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// unknownUserHash is compared against when the username does not exist so
// both failure paths pay for one bcrypt comparison.
func unknownUserHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("birdfinder-unknown-user"), passwordHashCost)
	})
	return dummyHash
}

func (s *sessionService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrAuthFailure
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(unknownUserHash(), []byte(password))
			return nil, ErrAuthFailure
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrAuthFailure
	}

	session := &domain.Session{
		Token:  uuid.NewString(),
		UserID: user.ID,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	return session, nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.ClearUser(ctx, token)
}

func (s *sessionService) RequireAuthenticated(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrUnauthenticated
	}
	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUnauthenticated
		}
		return 0, err
	}
	return userID, nil
}
