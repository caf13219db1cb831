package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"birdfinder/internal/domain"
	"birdfinder/internal/repository"
)

// passwordHashCost is the bcrypt work factor for stored passwords.
const passwordHashCost = 10

var (
	// ErrDuplicateUsername is returned when attempting to register with an existing username.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrUsernameRequired is returned when registering without a username.
	ErrUsernameRequired = errors.New("username is required")
	// ErrPasswordRequired is returned when registering without a password.
	ErrPasswordRequired = errors.New("password is required")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password is too long")
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden indicates an authenticated user lacks the admin role.
	ErrForbidden = errors.New("forbidden")
)

// UserService is the credential store: account creation and lookups.
type UserService interface {
	CreateUser(ctx context.Context, username, password string) (int64, error)
	// CreateAdmin is the out-of-band path for provisioning administrators.
	CreateAdmin(ctx context.Context, username, password string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserRole(ctx context.Context, userID int64) (domain.Role, error)
	// AuthorizeAdmin reads the caller's role from storage on every call.
	AuthorizeAdmin(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) CreateUser(ctx context.Context, username, password string) (int64, error) {
	return s.create(ctx, username, password, domain.RoleUser)
}

func (s *userService) CreateAdmin(ctx context.Context, username, password string) (int64, error) {
	return s.create(ctx, username, password, domain.RoleAdmin)
}

func (s *userService) create(ctx context.Context, username, password string, role domain.Role) (int64, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return 0, ErrUsernameRequired
	}
	if password == "" {
		return 0, ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, ErrPasswordTooLong
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return id, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetUserRole(ctx context.Context, userID int64) (domain.Role, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return user.Role, nil
}

func (s *userService) AuthorizeAdmin(ctx context.Context, userID int64) error {
	role, err := s.GetUserRole(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrForbidden
		}
		return err
	}
	if role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = *sanitizeUser(&users[i])
	}
	return users, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
