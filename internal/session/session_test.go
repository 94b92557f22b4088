package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskflow/internal/service"
)

func signedToken(t *testing.T, iat, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  7,
		"iat": iat.Unix(),
		"exp": exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestNew_ReadsClaims(t *testing.T) {
	iat := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	exp := iat.Add(30 * 24 * time.Hour)

	s, err := New(service.Auth{
		Token: signedToken(t, iat, exp),
		User:  service.User{ID: 7, Username: "ana", Email: "ana@example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IssuedAt.Equal(iat) {
		t.Errorf("expected IssuedAt %v, got %v", iat, s.IssuedAt)
	}
	if !s.ExpiresAt.Equal(exp) {
		t.Errorf("expected ExpiresAt %v, got %v", exp, s.ExpiresAt)
	}
	if s.User().Email != "ana@example.com" {
		t.Errorf("unexpected user %+v", s.User())
	}
}

func TestNew_OpaqueToken(t *testing.T) {
	s, err := New(service.Auth{Token: "opaque"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.ExpiresAt.IsZero() {
		t.Errorf("expected no expiry for opaque token, got %v", s.ExpiresAt)
	}
	if err := s.Check(time.Now()); err != nil {
		t.Errorf("expected opaque session to be usable, got %v", err)
	}
}

func TestNew_EmptyToken(t *testing.T) {
	if _, err := New(service.Auth{}); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	expired := &Session{Token: "t", ExpiresAt: now.Add(-time.Second)}
	if err := expired.Check(now); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
	if err := expired.Check(now); !errors.Is(err, service.ErrNoSession) {
		t.Errorf("expected expired session to match ErrNoSession, got %v", err)
	}

	s := &Session{Token: "t", ExpiresAt: now.Add(time.Hour)}
	if err := s.Check(now); err != nil {
		t.Errorf("expected usable session, got %v", err)
	}
	s.Invalidate()
	if err := s.Check(now); !errors.Is(err, ErrInvalidated) {
		t.Errorf("expected ErrInvalidated, got %v", err)
	}

	var none *Session
	if err := none.Check(now); !errors.Is(err, service.ErrNoSession) {
		t.Errorf("expected ErrNoSession for nil session, got %v", err)
	}
}

func TestContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no session in empty context")
	}
	s := &Session{Token: "abc"}
	got, ok := FromContext(NewContext(context.Background(), s))
	if !ok || got.Token != "abc" {
		t.Errorf("expected session from context, got %+v", got)
	}
}

func TestOAuthToken(t *testing.T) {
	s := &Session{Token: "abc"}
	tok := s.OAuthToken()
	if tok.AccessToken != "abc" || tok.Type() != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	if _, err := store.Load(); !errors.Is(err, service.ErrNoSession) {
		t.Fatalf("expected ErrNoSession from empty store, got %v", err)
	}

	if err := store.Save(&Session{Token: "abc", Username: "ana"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	s, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.Token != "abc" || s.Username != "ana" {
		t.Errorf("unexpected session %+v", s)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("clearing twice should not fail: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, service.ErrNoSession) {
		t.Errorf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load()
	if err == nil || errors.Is(err, service.ErrNoSession) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestGuard(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	if got := Guard(store, now); got != RouteLogin {
		t.Errorf("expected login route without session, got %v", got)
	}

	store.Save(&Session{Token: "abc"})
	if got := Guard(store, now); got != RouteTasks {
		t.Errorf("expected tasks route with session, got %v", got)
	}
	if RouteTasks.Path() != "/todos" || RouteLogin.Path() != "/login" {
		t.Error("unexpected route paths")
	}
	if RouteTasks.String() != "tasks" || RouteLogin.String() != "login" {
		t.Error("unexpected route names")
	}

	store.Save(&Session{Token: "abc", ExpiresAt: now.Add(-time.Minute)})
	if got := Guard(store, now); got != RouteLogin {
		t.Errorf("expected login route for expired session, got %v", got)
	}
}
