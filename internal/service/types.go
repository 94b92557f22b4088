package service

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// Task represents a single todo item as last seen from the backend.
type Task struct {
	ID          int
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Difficulty  Difficulty
	DueDate     time.Time // midnight UTC; zero if unset
}

// DueString returns the due date as YYYY-MM-DD, or "" when unset.
func (t Task) DueString() string {
	if t.DueDate.IsZero() {
		return ""
	}
	return t.DueDate.Format(DateLayout)
}

// Apply returns a copy of t with every field set in p overwritten.
func (t Task) Apply(p TaskPatch) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	return t
}

// TaskFields holds every user-editable field of a new task.
type TaskFields struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Difficulty  Difficulty
	DueDate     time.Time
}

// Patch converts the fields into a patch that sets all of them.
func (f TaskFields) Patch() TaskPatch {
	return TaskPatch{
		Title:       &f.Title,
		Description: &f.Description,
		Status:      &f.Status,
		Priority:    &f.Priority,
		Difficulty:  &f.Difficulty,
		DueDate:     &f.DueDate,
	}
}

// TaskPatch is a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Difficulty  *Difficulty
	DueDate     *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Difficulty == nil && p.DueDate == nil
}

// ParseDate parses a YYYY-MM-DD calendar date. RFC 3339 timestamps are
// accepted and truncated to their date part.
func ParseDate(s string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// User is the account a session belongs to.
type User struct {
	ID       int
	Username string
	Email    string
}

// Credentials are the inputs of a login.
type Credentials struct {
	Identifier string // email or username
	Password   string
}

// Registration holds the inputs of a sign-up.
type Registration struct {
	Username string
	Email    string
	Password string
}

// Auth is the result of a successful login or registration.
type Auth struct {
	Token string
	User  User
}
