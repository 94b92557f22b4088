package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"taskflow/internal/service"
	"taskflow/internal/session"
)

// StrapiServer serves the backend's auth and todo endpoints over HTTP,
// backed by a FakeService.
type StrapiServer struct {
	*httptest.Server

	// Service holds the server state.
	Service *FakeService

	// Nested makes responses use {"id":..,"attributes":{..}} records.
	Nested bool

	requests atomic.Int64
}

// NewStrapiServer starts a server. Callers must Close it.
func NewStrapiServer(svc *FakeService) *StrapiServer {
	s := &StrapiServer{Service: svc}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/local", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/local/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/todos", s.withSession(s.handleList)).Methods(http.MethodGet)
	api.HandleFunc("/todos", s.withSession(s.handleCreate)).Methods(http.MethodPost)
	api.HandleFunc("/todos/{id:[0-9]+}", s.withSession(s.handleUpdate)).Methods(http.MethodPut)
	api.HandleFunc("/todos/{id:[0-9]+}", s.withSession(s.handleDelete)).Methods(http.MethodDelete)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NotFoundError", "Not Found")
	})

	s.Server = httptest.NewServer(countRequests(&s.requests, r))
	return s
}

// Requests returns the number of requests served.
func (s *StrapiServer) Requests() int {
	return int(s.requests.Load())
}

func countRequests(n *atomic.Int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		next.ServeHTTP(w, r)
	})
}

// withSession turns the bearer token into a session in the request context.
func (s *StrapiServer) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusForbidden, "ForbiddenError", "Forbidden")
			return
		}
		ctx := session.NewContext(r.Context(), &session.Session{Token: token})
		next(w, r.WithContext(ctx))
	}
}

type wireAuthRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (s *StrapiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req wireAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "Invalid request body")
		return
	}
	auth, err := s.Service.Login(r.Context(), service.Credentials{Identifier: req.Identifier, Password: req.Password})
	if err != nil {
		s.writeServiceError(w, err, "Invalid identifier or password")
		return
	}
	writeAuth(w, auth)
}

func (s *StrapiServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req wireAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "Invalid request body")
		return
	}
	auth, err := s.Service.Register(r.Context(), service.Registration{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeServiceError(w, err, "Email or Username are already taken")
		return
	}
	writeAuth(w, auth)
}

func (s *StrapiServer) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.Service.ListTasks(r.Context())
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	records := make([]any, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, s.record(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": records,
		"meta": map[string]any{"pagination": map[string]int{"page": 1, "total": len(records)}},
	})
}

func (s *StrapiServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	data, err := decodeData(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
		return
	}
	p, err := data.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
		return
	}
	t := service.Task{}.Apply(p)
	task, err := s.Service.CreateTask(r.Context(), service.TaskFields{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Difficulty:  t.Difficulty,
		DueDate:     t.DueDate,
	})
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.record(task), "meta": map[string]any{}})
}

func (s *StrapiServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	data, err := decodeData(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
		return
	}
	p, err := data.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
		return
	}
	task, err := s.Service.UpdateTask(r.Context(), id, p)
	if err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.record(task), "meta": map[string]any{}})
}

func (s *StrapiServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := s.Service.DeleteTask(r.Context(), id); err != nil {
		s.writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]int{"id": id}, "meta": map[string]any{}})
}

func (s *StrapiServer) writeServiceError(w http.ResponseWriter, err error, credentialsMessage string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "ValidationError", credentialsMessage)
	case errors.Is(err, service.ErrNoSession), errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UnauthorizedError", "Missing or invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFoundError", "Not Found")
	default:
		writeError(w, http.StatusInternalServerError, "ApplicationError", err.Error())
	}
}

type wireTodo struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"todo_status"`
	Priority    *string         `json:"priority"`
	Difficulty  *string         `json:"dificulty"`
	DueDate     json.RawMessage `json:"due_date"`
}

func decodeData(r *http.Request) (wireTodo, error) {
	var body struct {
		Data *wireTodo `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return wireTodo{}, err
	}
	if body.Data == nil {
		return wireTodo{}, errors.New(`missing "data" payload in the request body`)
	}
	return *body.Data, nil
}

func (d wireTodo) patch() (service.TaskPatch, error) {
	p := service.TaskPatch{Title: d.Title, Description: d.Description}
	if d.Status != nil {
		v := service.Status(*d.Status)
		if !v.Valid() {
			return p, errors.New("todo_status must be one of the following values: todo, doing, done")
		}
		p.Status = &v
	}
	if d.Priority != nil {
		v := service.Priority(*d.Priority)
		if !v.Valid() {
			return p, errors.New("priority must be one of the following values: low, medium, high, very high")
		}
		p.Priority = &v
	}
	if d.Difficulty != nil {
		v := service.Difficulty(*d.Difficulty)
		if !v.Valid() {
			return p, errors.New("dificulty must be one of the following values: very easy, easy, medium, hard, very hard")
		}
		p.Difficulty = &v
	}
	if len(d.DueDate) > 0 {
		var raw *string
		if err := json.Unmarshal(d.DueDate, &raw); err != nil {
			return p, err
		}
		var due time.Time
		if raw != nil {
			parsed, err := service.ParseDate(*raw)
			if err != nil {
				return p, err
			}
			due = parsed
		}
		p.DueDate = &due
	}
	return p, nil
}

func (s *StrapiServer) record(t service.Task) map[string]any {
	attrs := map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"todo_status": string(t.Status),
		"priority":    string(t.Priority),
		"dificulty":   string(t.Difficulty),
		"due_date":    nil,
		"createdAt":   "2024-05-01T10:00:00.000Z",
		"updatedAt":   "2024-05-01T10:00:00.000Z",
	}
	if due := t.DueString(); due != "" {
		attrs["due_date"] = due
	}
	if s.Nested {
		return map[string]any{"id": t.ID, "attributes": attrs}
	}
	attrs["id"] = t.ID
	return attrs
}

func writeAuth(w http.ResponseWriter, auth service.Auth) {
	writeJSON(w, http.StatusOK, map[string]any{
		"jwt": auth.Token,
		"user": map[string]any{
			"id":        auth.User.ID,
			"username":  auth.User.Username,
			"email":     auth.User.Email,
			"confirmed": true,
			"blocked":   false,
		},
	})
}

// writeError writes the backend error body.
func writeError(w http.ResponseWriter, status int, name, message string) {
	writeJSON(w, status, map[string]any{
		"data": nil,
		"error": map[string]any{
			"status":  status,
			"name":    name,
			"message": message,
			"details": map[string]any{},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
