package service

import (
	"context"
	"errors"
	"testing"

	"birdfinder/internal/testutil"
)

func TestLogin(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	sessions := NewSessionService(repos.Users, repos.Sessions)
	ctx := context.Background()

	aliceID, err := users.CreateUser(ctx, "alice", "correct")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := sessions.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrAuthFailure) {
		t.Errorf("Expected ErrAuthFailure for wrong password, got %v", err)
	}
	if _, err := sessions.Login(ctx, "nobody", "correct"); !errors.Is(err, ErrAuthFailure) {
		t.Errorf("Expected ErrAuthFailure for unknown user, got %v", err)
	}
	if _, err := sessions.Login(ctx, "", ""); !errors.Is(err, ErrAuthFailure) {
		t.Errorf("Expected ErrAuthFailure for empty credentials, got %v", err)
	}

	session, err := sessions.Login(ctx, "alice", "correct")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token == "" {
		t.Fatal("Login returned an empty token")
	}
	if session.UserID != aliceID {
		t.Errorf("Session bound to %d, want %d", session.UserID, aliceID)
	}

	userID, err := sessions.RequireAuthenticated(ctx, session.Token)
	if err != nil {
		t.Fatalf("RequireAuthenticated failed: %v", err)
	}
	if userID != aliceID {
		t.Errorf("RequireAuthenticated = %d, want %d", userID, aliceID)
	}
}

func TestLoginIssuesDistinctTokens(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	sessions := NewSessionService(repos.Users, repos.Sessions)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "alice", "pw"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	first, err := sessions.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, err := sessions.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if first.Token == second.Token {
		t.Error("Expected a new token per login")
	}

	if err := sessions.Logout(ctx, first.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := sessions.RequireAuthenticated(ctx, second.Token); err != nil {
		t.Errorf("Logging out one session must not affect another: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	sessions := NewSessionService(repos.Users, repos.Sessions)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "alice", "pw"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	session, err := sessions.Login(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := sessions.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := sessions.RequireAuthenticated(ctx, session.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated after logout, got %v", err)
	}
}

func TestRequireAuthenticatedRejectsUnknownTokens(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	sessions := NewSessionService(repos.Users, repos.Sessions)

	for _, token := range []string{"", "not-a-session"} {
		if _, err := sessions.RequireAuthenticated(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
	if err := sessions.Logout(context.Background(), ""); err != nil {
		t.Errorf("Logout of an empty token should be a no-op, got %v", err)
	}
}

func TestLoginComparesPasswordVerbatim(t *testing.T) {
	_, repos := testutil.OpenRepositories(t)
	users := NewUserService(repos.Users)
	sessions := NewSessionService(repos.Users, repos.Sessions)
	ctx := context.Background()

	if _, err := users.CreateUser(ctx, "bob", "  pw123  "); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for _, attempt := range []string{"pw123", " pw123", "pw123  "} {
		if _, err := sessions.Login(ctx, "bob", attempt); !errors.Is(err, ErrAuthFailure) {
			t.Errorf("password %q: expected ErrAuthFailure, got %v", attempt, err)
		}
	}
	if _, err := sessions.Login(ctx, " bob ", "  pw123  "); err != nil {
		t.Errorf("Exact password with padded username should log in, got %v", err)
	}
}
