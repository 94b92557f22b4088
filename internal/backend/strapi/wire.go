package strapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"taskflow/internal/service"
)

// Field names follow the backend content type, including its spelling of
// "dificulty".

// todoData is the body of a create or update request. Nil fields are omitted.
type todoData struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *string  `json:"todo_status,omitempty"`
	Priority    *string  `json:"priority,omitempty"`
	Difficulty  *string  `json:"dificulty,omitempty"`
	DueDate     *dueDate `json:"due_date,omitempty"`
}

// dueDate is a calendar date. The zero date is sent as null, which clears it.
type dueDate time.Time

func (d dueDate) MarshalJSON() ([]byte, error) {
	t := time.Time(d)
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(service.DateLayout))
}

type writeRequest struct {
	Data todoData `json:"data"`
}

func patchToData(p service.TaskPatch) todoData {
	var d todoData
	if p.Title != nil {
		d.Title = p.Title
	}
	if p.Description != nil {
		d.Description = p.Description
	}
	if p.Status != nil {
		d.Status = ptr(string(*p.Status))
	}
	if p.Priority != nil {
		d.Priority = ptr(string(*p.Priority))
	}
	if p.Difficulty != nil {
		d.Difficulty = ptr(string(*p.Difficulty))
	}
	if p.DueDate != nil {
		d.DueDate = ptr(dueDate(*p.DueDate))
	}
	return d
}

func ptr[T any](v T) *T { return &v }

type todoAttributes struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"todo_status"`
	Priority    string `json:"priority"`
	Difficulty  string `json:"dificulty"`
	DueDate     string `json:"due_date"`
}

// todoRecord accepts both flat records and records nested under
// "attributes".
type todoRecord struct {
	ID int `json:"id"`
	todoAttributes
	Attributes *todoAttributes `json:"attributes"`
}

func (r todoRecord) task() service.Task {
	attrs := r.todoAttributes
	if r.Attributes != nil {
		attrs = *r.Attributes
	}
	t := service.Task{
		ID:          r.ID,
		Title:       attrs.Title,
		Description: attrs.Description,
		Status:      service.Status(attrs.Status),
		Priority:    service.Priority(attrs.Priority),
		Difficulty:  service.Difficulty(attrs.Difficulty),
	}
	if attrs.DueDate != "" {
		if due, err := service.ParseDate(attrs.DueDate); err == nil {
			t.DueDate = due
		}
	}
	return t
}

type recordEnvelope struct {
	Data *todoRecord `json:"data"`
}

type listEnvelope struct {
	Data []todoRecord `json:"data"`
}

func decodeRecord(body []byte) (service.Task, error) {
	var env recordEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return service.Task{}, fmt.Errorf("decode response: %w", err)
	}
	if env.Data != nil {
		return env.Data.task(), nil
	}
	var rec todoRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return service.Task{}, fmt.Errorf("decode response: %w", err)
	}
	if rec.ID == 0 {
		return service.Task{}, fmt.Errorf("decode response: record has no id")
	}
	return rec.task(), nil
}

func decodeList(body []byte) ([]service.Task, error) {
	var records []todoRecord
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	} else {
		var env listEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		records = env.Data
	}

	tasks := make([]service.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	JWT  string `json:"jwt"`
	User struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

func (a authResponse) auth() service.Auth {
	return service.Auth{
		Token: a.JWT,
		User: service.User{
			ID:       a.User.ID,
			Username: a.User.Username,
			Email:    a.User.Email,
		},
	}
}

// errorResponse is the backend error body: {"data":null,"error":{...}}.
type errorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

func todoPath(id int) string {
	return "api/todos/" + strconv.Itoa(id)
}

// timeNow is replaced in tests.
var timeNow = time.Now
