// Package web serves the browser front end: login and registration pages,
// the task list and the create/edit dialogs, all rendered on the server.
package web

import (
	"context"
	"crypto/sha256"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"taskflow/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	cookieName      = "taskflow"
	cookieMaxAge    = 7 * 24 * 60 * 60
	shutdownTimeout = 5 * time.Second
)

// Options configure a Server.
type Options struct {
	// CookieSecret authenticates and encrypts the session cookie. A random
	// secret is generated when empty.
	CookieSecret string

	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool
}

// Server is the browser front end.
type Server struct {
	svc     service.Service
	cookies sessions.Store
	boards  *boardRegistry
	pages   map[string]*template.Template
	router  *mux.Router
	now     func() time.Time
}

// New creates a server. Boards created for browser sessions live until ctx
// is done.
func New(ctx context.Context, svc service.Service, opts Options) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:     svc,
		cookies: newCookieStore(opts),
		boards:  newBoardRegistry(ctx),
		pages:   pages,
		now:     time.Now,
	}
	s.router = s.routes()
	return s, nil
}

func newCookieStore(opts Options) *sessions.CookieStore {
	var hashKey, blockKey []byte
	if opts.CookieSecret == "" {
		hashKey = securecookie.GenerateRandomKey(64)
		blockKey = securecookie.GenerateRandomKey(32)
	} else {
		h := sha256.Sum256([]byte("hash:" + opts.CookieSecret))
		b := sha256.Sum256([]byte("block:" + opts.CookieSecret))
		hashKey, blockKey = h[:], b[:]
	}

	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegisterPage).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	todos := r.PathPrefix("/todos").Subrouter()
	todos.Use(s.requireSession)
	todos.HandleFunc("", s.handleList).Methods(http.MethodGet)
	todos.HandleFunc("/new", s.handleNewPage).Methods(http.MethodGet)
	todos.HandleFunc("/new", s.handleCreate).Methods(http.MethodPost)
	todos.HandleFunc("/{id:[0-9]+}/edit", s.handleEditPage).Methods(http.MethodGet)
	todos.HandleFunc("/{id:[0-9]+}/edit", s.handleUpdate).Methods(http.MethodPost)
	todos.HandleFunc("/{id:[0-9]+}/delete", s.handleDelete).Methods(http.MethodPost)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return logRequests(s.router)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger := log.FromContext(ctx)
	logger.Info("serving", "addr", "http://"+ln.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		s.boards.closeAll()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.boards.closeAll()
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return err
}
