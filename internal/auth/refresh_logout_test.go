package auth

import (
	"context"
	"testing"
	"time"
)

func TestRefreshRotatesSession(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Test User", "user@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(ctx, "user@example.com", "password123", "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.RefreshToken == "" {
		t.Fatal("expected refresh token")
	}

	refreshed, err := svc.Refresh(ctx, login.RefreshToken, "test-agent", "127.0.0.1")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Fatal("expected rotated refresh token")
	}
	if got := store.activeSessionCount(); got != 1 {
		t.Fatalf("active sessions = %d, want 1", got)
	}

	// The replaced token must not work a second time.
	if _, err := svc.Refresh(ctx, login.RefreshToken, "test-agent", "127.0.0.1"); err == nil {
		t.Fatal("expected replayed refresh token to be rejected")
	}
}

func TestRefreshRejectsExpiredSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Test User", "user@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(ctx, "user@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.WithNow(func() time.Time { return time.Now().Add(2 * time.Hour) })
	if _, err := svc.Refresh(ctx, login.RefreshToken, "", ""); err == nil {
		t.Fatal("expected expired session to be rejected")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Test User", "user@example.com", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(ctx, "user@example.com", "password123", "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := store.activeSessionCount(); got != 0 {
		t.Fatalf("active sessions = %d, want 0", got)
	}
	if _, err := svc.Refresh(ctx, login.RefreshToken, "", ""); err == nil {
		t.Fatal("expected refresh after logout to fail")
	}

	// Logging out twice is harmless.
	if err := svc.Logout(ctx, login.RefreshToken); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}
