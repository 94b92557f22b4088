// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskflow/internal/service"
	"taskflow/internal/session"
)

// TokenLifetime is the lifetime of tokens issued by FakeService.
const TokenLifetime = 30 * 24 * time.Hour

type fakeUser struct {
	user     service.User
	password string
}

type ownedTask struct {
	owner int
	task  service.Task
}

// FakeService is an in-memory implementation of service.Service for testing.
// It issues signed JWTs and scopes tasks to the user they belong to.
type FakeService struct {
	mu         sync.RWMutex
	users      []fakeUser
	tasks      []ownedTask
	nextUserID int
	nextTaskID int
	secret     []byte
	calls      map[string]int

	// Now is the clock used for token issue and checks.
	Now func() time.Time

	// Error injection for testing
	LoginErr      error
	RegisterErr   error
	CreateTaskErr error
	ListTasksErr  error
	UpdateTaskErr error
	DeleteTaskErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextUserID: 1,
		nextTaskID: 1,
		secret:     []byte("fake-service-secret"),
		calls:      make(map[string]int),
		Now:        time.Now,
	}
}

// Calls returns how many times the named method was invoked.
func (f *FakeService) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

func (f *FakeService) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

// AddUser registers an account directly.
func (f *FakeService) AddUser(username, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(username, email, password)
}

func (f *FakeService) addUserLocked(username, email, password string) service.User {
	u := service.User{ID: f.nextUserID, Username: username, Email: email}
	f.nextUserID++
	f.users = append(f.users, fakeUser{user: u, password: password})
	return u
}

// AddTask stores a task owned by userID. A zero task ID is assigned.
func (f *FakeService) AddTask(userID int, t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextTaskID
	}
	if t.ID >= f.nextTaskID {
		f.nextTaskID = t.ID + 1
	}
	f.tasks = append(f.tasks, ownedTask{owner: userID, task: t})
	return t
}

// Tasks returns every stored task of every user, ordered by ID.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, 0, len(f.tasks))
	for _, ot := range f.tasks {
		out = append(out, ot.task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IssueToken returns a signed token for u.
func (f *FakeService) IssueToken(u service.User) string {
	now := f.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  u.ID,
		"iat": now.Unix(),
		"exp": now.Add(TokenLifetime).Unix(),
	})
	signed, err := tok.SignedString(f.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

// SessionFor returns a session for u, as a login would create it.
func (f *FakeService) SessionFor(u service.User) *session.Session {
	s, err := session.New(service.Auth{Token: f.IssueToken(u), User: u})
	if err != nil {
		panic(err)
	}
	return s
}

// ContextFor returns a context carrying a session for u.
func (f *FakeService) ContextFor(ctx context.Context, u service.User) context.Context {
	return session.NewContext(ctx, f.SessionFor(u))
}

// Authenticate verifies a token issued by IssueToken.
func (f *FakeService) Authenticate(token string) (service.User, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return f.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(f.Now))
	if err != nil {
		return service.User{}, fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}
	id, _ := claims["id"].(float64)

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.user.ID == int(id) {
			return u.user, nil
		}
	}
	return service.User{}, service.ErrUnauthorized
}

func (f *FakeService) userFromContext(ctx context.Context) (service.User, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return service.User{}, service.ErrNoSession
	}
	if err := s.Check(f.Now()); err != nil {
		return service.User{}, err
	}
	return f.Authenticate(s.Token)
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.Auth, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.Auth{}, f.LoginErr
	}
	f.mu.RLock()
	var found *fakeUser
	for i, u := range f.users {
		if strings.EqualFold(u.user.Email, creds.Identifier) || u.user.Username == creds.Identifier {
			found = &f.users[i]
			break
		}
	}
	f.mu.RUnlock()

	if found == nil || found.password != creds.Password {
		return service.Auth{}, fmt.Errorf("%w: invalid identifier or password", service.ErrInvalidCredentials)
	}
	return service.Auth{Token: f.IssueToken(found.user), User: found.user}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.Auth, error) {
	f.record("Register")
	if f.RegisterErr != nil {
		return service.Auth{}, f.RegisterErr
	}
	f.mu.Lock()
	for _, u := range f.users {
		if strings.EqualFold(u.user.Email, reg.Email) || u.user.Username == reg.Username {
			f.mu.Unlock()
			return service.Auth{}, fmt.Errorf("%w: email or username are already taken", service.ErrInvalidCredentials)
		}
	}
	u := f.addUserLocked(reg.Username, reg.Email, reg.Password)
	f.mu.Unlock()

	return service.Auth{Token: f.IssueToken(u), User: u}, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, fields service.TaskFields) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	u, err := f.userFromContext(ctx)
	if err != nil {
		return service.Task{}, err
	}
	if strings.TrimSpace(fields.Title) == "" {
		return service.Task{}, errors.New("title must be defined")
	}

	t := service.Task{}.Apply(fields.Patch())
	return f.AddTask(u.ID, t), nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	u, err := f.userFromContext(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	result := []service.Task{}
	for _, ot := range f.tasks {
		if ot.owner == u.ID {
			result = append(result, ot.task)
		}
	}
	return result, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int, patch service.TaskPatch) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	u, err := f.userFromContext(ctx)
	if err != nil {
		return service.Task{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, ot := range f.tasks {
		if ot.task.ID == id && ot.owner == u.ID {
			f.tasks[i].task = ot.task.Apply(patch)
			return f.tasks[i].task, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	u, err := f.userFromContext(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, ot := range f.tasks {
		if ot.task.ID == id && ot.owner == u.ID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}
