package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"birdfinder/internal/domain"
	"birdfinder/internal/testutil"
)

func TestCreateUserHashesPassword(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	ctx := context.Background()

	id, err := users.CreateUser(ctx, "alice", "correct")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	stored, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.PasswordHash == "correct" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("Expected a bcrypt hash, got %q", stored.PasswordHash)
	}
	if stored.Role != domain.RoleUser {
		t.Errorf("Expected default role user, got %q", stored.Role)
	}

	byName, err := users.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.PasswordHash != "" {
		t.Error("GetUserByUsername must not expose the password hash")
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "alice", "first"); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}
	if _, err := users.CreateUser(ctx, "alice", "second"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("Expected ErrDuplicateUsername, got %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'alice'`).Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly one row, found %d", count)
	}
}

func TestCreateUserConcurrentDuplicate(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := users.CreateUser(context.Background(), "racer", "pw")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicateUsername):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || duplicates != 1 {
		t.Errorf("Expected one success and one duplicate, got %d/%d", successes, duplicates)
	}
}

func TestCreateUserValidation(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)

	if _, err := users.CreateUser(context.Background(), "  ", "pw"); !errors.Is(err, ErrUsernameRequired) {
		t.Errorf("Expected ErrUsernameRequired, got %v", err)
	}
	if _, err := users.CreateUser(context.Background(), "dave", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("Expected ErrPasswordRequired, got %v", err)
	}
}

func TestGetUserRole(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	ctx := context.Background()

	adminID, err := users.CreateAdmin(ctx, "root", "pw")
	if err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	role, err := users.GetUserRole(ctx, adminID)
	if err != nil {
		t.Fatalf("GetUserRole failed: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Errorf("Expected admin role, got %q", role)
	}

	if _, err := users.GetUserRole(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthorizeAdminRereadsRole(t *testing.T) {
	db, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	ctx := context.Background()

	userID, err := users.CreateUser(ctx, "plain", "pw")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := users.AuthorizeAdmin(ctx, userID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Expected ErrForbidden for role user, got %v", err)
	}

	// role changed out-of-band takes effect on the next check
	if _, err := db.Exec(`UPDATE users SET role = 'admin' WHERE id = ?`, userID); err != nil {
		t.Fatalf("promote user: %v", err)
	}
	if err := users.AuthorizeAdmin(ctx, userID); err != nil {
		t.Fatalf("Expected promoted user to pass, got %v", err)
	}

	if err := users.AuthorizeAdmin(ctx, 12345); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for unknown user, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := users.CreateUser(ctx, name, "pw"); err != nil {
			t.Fatalf("CreateUser %s failed: %v", name, err)
		}
	}

	list, err := users.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 users, got %d", len(list))
	}
	for _, u := range list {
		if u.PasswordHash != "" {
			t.Errorf("ListUsers leaked a password hash for %s", u.Username)
		}
	}
}

func TestCreateUserRejectsOverlongPassword(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "verbose", strings.Repeat("p", 73)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("Expected ErrPasswordTooLong, got %v", err)
	}
	if _, err := users.GetUserByUsername(ctx, "verbose"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Rejected registration stored a user: %v", err)
	}
	if _, err := users.CreateUser(ctx, "verbose", strings.Repeat("p", 72)); err != nil {
		t.Errorf("72-byte password should be accepted, got %v", err)
	}
}
