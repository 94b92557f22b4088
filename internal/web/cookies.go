package web

import (
	"net/http"

	"github.com/gorilla/sessions"

	"taskflow/internal/service"
	"taskflow/internal/session"
)

// Cookie session keys.
const (
	keyToken    = "token"
	keyUserID   = "user_id"
	keyUsername = "username"
	keyEmail    = "email"
	keyBoard    = "board"
)

// Flash kinds.
const (
	flashError = "error"
	flashInfo  = "info"
)

// cookieStore is a session.Store over the request's cookie session.
// Save and Clear change the session values; flush writes the cookie.
type cookieStore struct {
	sess *sessions.Session
	r    *http.Request
	w    http.ResponseWriter
}

// cookie returns the cookie session of r. A cookie that fails to decode,
// for instance after the secret changed, yields a fresh session.
func (s *Server) cookie(w http.ResponseWriter, r *http.Request) *cookieStore {
	sess, _ := s.cookies.Get(r, cookieName)
	return &cookieStore{sess: sess, r: r, w: w}
}

// Load implements session.Store.
func (c *cookieStore) Load() (*session.Session, error) {
	token, _ := c.sess.Values[keyToken].(string)
	if token == "" {
		return nil, service.ErrNoSession
	}
	id, _ := c.sess.Values[keyUserID].(int)
	username, _ := c.sess.Values[keyUsername].(string)
	email, _ := c.sess.Values[keyEmail].(string)
	return session.New(service.Auth{
		Token: token,
		User:  service.User{ID: id, Username: username, Email: email},
	})
}

// Save implements session.Store. An invalidated session clears the cookie.
func (c *cookieStore) Save(s *session.Session) error {
	if s.Invalidated {
		return c.Clear()
	}
	c.sess.Values[keyToken] = s.Token
	c.sess.Values[keyUserID] = s.UserID
	c.sess.Values[keyUsername] = s.Username
	c.sess.Values[keyEmail] = s.Email
	return nil
}

// Clear implements session.Store.
func (c *cookieStore) Clear() error {
	for _, k := range []string{keyToken, keyUserID, keyUsername, keyEmail} {
		delete(c.sess.Values, k)
	}
	return nil
}

// boardKey returns the board key of the browser session, assigning one if
// needed. The cookie is written by the next flush.
func (c *cookieStore) boardKey() string {
	if key, ok := c.sess.Values[keyBoard].(string); ok && key != "" {
		return key
	}
	key := newKey()
	c.sess.Values[keyBoard] = key
	return key
}

func (c *cookieStore) flash(kind, msg string) {
	c.sess.AddFlash(msg, kind)
}

// flashes pops the pending notifications.
func (c *cookieStore) flashes() []flash {
	var out []flash
	for _, kind := range []string{flashError, flashInfo} {
		for _, v := range c.sess.Flashes(kind) {
			if msg, ok := v.(string); ok {
				out = append(out, flash{Kind: kind, Message: msg})
			}
		}
	}
	return out
}

// flush writes the cookie.
func (c *cookieStore) flush() error {
	return c.sess.Save(c.r, c.w)
}
