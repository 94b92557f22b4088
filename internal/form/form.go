// Package form validates user input for the auth and task editor forms.
//
// Each form is checked against an embedded JSON schema before any network
// call is made. Failures come back as a *ValidationError listing one message
// per field, ready to be shown next to that field.
package form

import (
	"errors"
	"strings"

	"taskflow/internal/service"
)

// FieldError is a validation message for one form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the invalid fields of a submitted form.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for field, or "" if it is valid.
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	for _, fe := range e.Errors {
		if fe.Field == name {
			return fe.Message
		}
	}
	return ""
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

var (
	loginSchema = mustCompile("login.json",
		[]string{"email", "password"},
		map[string]string{
			"email":    "invalid email",
			"password": "password must have at least 3 characters",
		})

	registerSchema = mustCompile("register.json",
		[]string{"username", "email", "password"},
		map[string]string{
			"username": "username is required (at most 70 characters)",
			"email":    "invalid email",
			"password": "password must have at least 3 characters",
		})

	taskSchema = mustCompile("task.json",
		[]string{"title", "description", "status", "priority", "difficulty", "due_date"},
		map[string]string{
			"title":      "title is required",
			"status":     "select a status (todo, doing, done)",
			"priority":   "select a priority (low, medium, high, very-high)",
			"difficulty": "select a difficulty (very-easy, easy, medium, hard, very-hard)",
			"due_date":   "select a due date (YYYY-MM-DD)",
		})
)

// Login is the login form.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the form against the login schema.
func (f Login) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return loginSchema.validate(f)
}

// Credentials validates the form and returns the login request.
func (f Login) Credentials() (service.Credentials, error) {
	if err := f.Validate(); err != nil {
		return service.Credentials{}, err
	}
	return service.Credentials{Identifier: strings.TrimSpace(f.Email), Password: f.Password}, nil
}

// Register is the sign-up form.
type Register struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the form against the registration schema.
func (f Register) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return registerSchema.validate(f)
}

// Registration validates the form and returns the sign-up request.
func (f Register) Registration() (service.Registration, error) {
	if err := f.Validate(); err != nil {
		return service.Registration{}, err
	}
	return service.Registration{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}, nil
}

// Task is the create/edit task form. All values are kept as entered so a
// rejected form can be shown again unchanged.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Difficulty  string `json:"difficulty"`
	DueDate     string `json:"due_date"`
}

// NewTask returns the defaults of an empty create form.
func NewTask() Task {
	return Task{
		Status:     string(service.StatusTodo),
		Priority:   string(service.PriorityMedium),
		Difficulty: string(service.DifficultyMedium),
	}
}

// TaskFrom pre-fills a form from an existing task.
func TaskFrom(t service.Task) Task {
	return Task{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Difficulty:  string(t.Difficulty),
		DueDate:     t.DueString(),
	}
}

// normalized maps enum spellings onto their canonical values.
func (f Task) normalized() Task {
	f.Status = string(service.NormalizeStatus(f.Status))
	f.Priority = string(service.NormalizePriority(f.Priority))
	f.Difficulty = string(service.NormalizeDifficulty(f.Difficulty))
	f.DueDate = strings.TrimSpace(f.DueDate)
	return f
}

// Validate checks the form against the task schema.
func (f Task) Validate() error {
	return taskSchema.validate(f.normalized())
}

// Fields validates the form and converts it to task fields.
func (f Task) Fields() (service.TaskFields, error) {
	f = f.normalized()
	if err := taskSchema.validate(f); err != nil {
		return service.TaskFields{}, err
	}
	due, err := service.ParseDate(f.DueDate)
	if err != nil {
		return service.TaskFields{}, &ValidationError{Errors: []FieldError{{Field: "due_date", Message: taskSchema.messages["due_date"]}}}
	}
	return service.TaskFields{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Status:      service.Status(f.Status),
		Priority:    service.Priority(f.Priority),
		Difficulty:  service.Difficulty(f.Difficulty),
		DueDate:     due,
	}, nil
}

// TaskChanges holds only the task fields a user chose to change. Nil fields
// are left untouched, so a stored task with missing fields can still be
// edited one field at a time.
type TaskChanges struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Difficulty  *string
	DueDate     *string
}

// Patch validates the given fields and converts them to a partial update.
func (c TaskChanges) Patch() (service.TaskPatch, error) {
	doc := make(map[string]string)
	set := func(field string, v *string, normalize func(string) string) {
		if v != nil {
			doc[field] = normalize(*v)
		}
	}
	set("title", c.Title, func(s string) string { return s })
	set("description", c.Description, strings.TrimSpace)
	set("status", c.Status, func(s string) string { return string(service.NormalizeStatus(s)) })
	set("priority", c.Priority, func(s string) string { return string(service.NormalizePriority(s)) })
	set("difficulty", c.Difficulty, func(s string) string { return string(service.NormalizeDifficulty(s)) })
	set("due_date", c.DueDate, strings.TrimSpace)

	if err := taskSchema.validateOnly(doc); err != nil {
		return service.TaskPatch{}, err
	}

	var p service.TaskPatch
	if v, ok := doc["title"]; ok {
		title := strings.TrimSpace(v)
		p.Title = &title
	}
	if v, ok := doc["description"]; ok {
		p.Description = &v
	}
	if v, ok := doc["status"]; ok {
		status := service.Status(v)
		p.Status = &status
	}
	if v, ok := doc["priority"]; ok {
		priority := service.Priority(v)
		p.Priority = &priority
	}
	if v, ok := doc["difficulty"]; ok {
		difficulty := service.Difficulty(v)
		p.Difficulty = &difficulty
	}
	if v, ok := doc["due_date"]; ok {
		due, err := service.ParseDate(v)
		if err != nil {
			return service.TaskPatch{}, &ValidationError{Errors: []FieldError{{Field: "due_date", Message: taskSchema.messages["due_date"]}}}
		}
		p.DueDate = &due
	}
	return p, nil
}
