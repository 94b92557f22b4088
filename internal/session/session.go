// Package session holds the authenticated session and its storage.
//
// A Session replaces a process-wide token: it is created from a successful
// login, carries its own expiry and invalidation state, and travels to the
// backend through a context.Context.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"taskflow/internal/service"
)

// ErrExpired is returned for a session whose token has passed its exp claim.
// It matches service.ErrNoSession with errors.Is.
var ErrExpired = fmt.Errorf("session expired: %w", service.ErrNoSession)

// ErrInvalidated is returned for a session that was explicitly logged out or
// rejected by the server.
var ErrInvalidated = fmt.Errorf("session invalidated: %w", service.ErrNoSession)

// Session is an authenticated user session.
type Session struct {
	Token       string    `json:"token"`
	UserID      int       `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Email       string    `json:"email,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"` // zero when the token carries no exp claim
	Invalidated bool      `json:"invalidated,omitempty"`
}

// New builds a session from a login result. The token is treated as opaque;
// when it is a JWT its iat and exp claims are read (without verifying the
// signature, which only the backend can do).
func New(auth service.Auth) (*Session, error) {
	if auth.Token == "" {
		return nil, errors.New("empty session token")
	}
	s := &Session{
		Token:    auth.Token,
		UserID:   auth.User.ID,
		Username: auth.User.Username,
		Email:    auth.User.Email,
	}

	tok, _, err := jwt.NewParser().ParseUnverified(auth.Token, jwt.MapClaims{})
	if err != nil {
		return s, nil
	}
	if exp, err := tok.Claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time.UTC()
	}
	if iat, err := tok.Claims.GetIssuedAt(); err == nil && iat != nil {
		s.IssuedAt = iat.Time.UTC()
	}
	return s, nil
}

// User returns the account the session belongs to.
func (s *Session) User() service.User {
	return service.User{ID: s.UserID, Username: s.Username, Email: s.Email}
}

// Expired reports whether the token has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Invalidate marks the session as no longer usable.
func (s *Session) Invalidate() {
	s.Invalidated = true
}

// Check returns nil if the session can authenticate requests at now.
func (s *Session) Check(now time.Time) error {
	switch {
	case s == nil || s.Token == "":
		return service.ErrNoSession
	case s.Invalidated:
		return ErrInvalidated
	case s.Expired(now):
		return ErrExpired
	}
	return nil
}

// OAuthToken returns the session as a bearer token for oauth2 transports.
func (s *Session) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: s.Token,
		TokenType:   "Bearer",
		Expiry:      s.ExpiresAt,
	}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
