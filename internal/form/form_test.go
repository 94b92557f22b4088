package form

import (
	"testing"

	"taskflow/internal/service"
)

func validTask() Task {
	return Task{
		Title:      "Buy milk",
		Status:     "todo",
		Priority:   "medium",
		Difficulty: "easy",
		DueDate:    "2024-06-01",
	}
}

func TestTask_Valid(t *testing.T) {
	fields, err := validTask().Fields()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Title != "Buy milk" || fields.Status != service.StatusTodo || fields.Priority != service.PriorityMedium {
		t.Errorf("unexpected fields %+v", fields)
	}
	if fields.DueDate.Format(service.DateLayout) != "2024-06-01" {
		t.Errorf("unexpected due date %v", fields.DueDate)
	}
}

func TestTask_NormalizesEnumSpellings(t *testing.T) {
	f := validTask()
	f.Priority = "Very-High"
	f.Difficulty = "very_hard"
	fields, err := f.Fields()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields.Priority != service.PriorityVeryHigh {
		t.Errorf("expected %q, got %q", service.PriorityVeryHigh, fields.Priority)
	}
	if fields.Difficulty != service.DifficultyVeryHard {
		t.Errorf("expected %q, got %q", service.DifficultyVeryHard, fields.Difficulty)
	}
}

func TestTask_FieldErrors(t *testing.T) {
	f := Task{
		Title:      "   ",
		Status:     "later",
		Priority:   "urgent",
		Difficulty: "medium",
		DueDate:    "01/06/2024",
	}
	err := f.Validate()
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := []FieldError{
		{Field: "title", Message: "title is required"},
		{Field: "status", Message: "select a status (todo, doing, done)"},
		{Field: "priority", Message: "select a priority (low, medium, high, very-high)"},
		{Field: "due_date", Message: "select a due date (YYYY-MM-DD)"},
	}
	if len(ve.Errors) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(ve.Errors), ve.Errors)
	}
	for i := range want {
		if ve.Errors[i] != want[i] {
			t.Errorf("error %d: expected %+v, got %+v", i, want[i], ve.Errors[i])
		}
	}
	if ve.Field("difficulty") != "" {
		t.Errorf("difficulty should be valid, got %q", ve.Field("difficulty"))
	}
}

func TestTask_MissingDueDate(t *testing.T) {
	f := NewTask()
	f.Title = "Write report"
	ve, ok := AsValidationError(f.Validate())
	if !ok {
		t.Fatal("expected ValidationError for missing due date")
	}
	if ve.Field("due_date") == "" {
		t.Error("expected due_date error")
	}
	if len(ve.Errors) != 1 {
		t.Errorf("expected only due_date to fail, got %v", ve.Errors)
	}
}

func TestNewTask_Defaults(t *testing.T) {
	f := NewTask()
	if f.Status != "todo" || f.Priority != "medium" || f.Difficulty != "medium" {
		t.Errorf("unexpected defaults %+v", f)
	}
	if f.Title != "" || f.DueDate != "" {
		t.Errorf("expected empty title and due date, got %+v", f)
	}
}

func TestTaskFrom(t *testing.T) {
	due, _ := service.ParseDate("2024-07-15")
	f := TaskFrom(service.Task{
		ID:         3,
		Title:      "Plan trip",
		Status:     service.StatusDoing,
		Priority:   service.PriorityVeryHigh,
		Difficulty: service.DifficultyHard,
		DueDate:    due,
	})
	if f.Title != "Plan trip" || f.Status != "doing" || f.Priority != "very high" || f.DueDate != "2024-07-15" {
		t.Errorf("unexpected form %+v", f)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("pre-filled form should be valid: %v", err)
	}
}

func TestLogin(t *testing.T) {
	creds, err := Login{Email: " ana@example.com ", Password: "secret"}.Credentials()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.Identifier != "ana@example.com" {
		t.Errorf("expected trimmed identifier, got %q", creds.Identifier)
	}

	ve, ok := AsValidationError(Login{Email: "not-an-email", Password: "ab"}.Validate())
	if !ok {
		t.Fatal("expected ValidationError")
	}
	if ve.Field("email") != "invalid email" {
		t.Errorf("unexpected email message %q", ve.Field("email"))
	}
	if ve.Field("password") != "password must have at least 3 characters" {
		t.Errorf("unexpected password message %q", ve.Field("password"))
	}
	if ve.Error() != "email: invalid email; password: password must have at least 3 characters" {
		t.Errorf("unexpected error string %q", ve.Error())
	}
}

func TestRegister(t *testing.T) {
	if _, err := (Register{Username: "ana", Email: "ana@example.com", Password: "abc"}).Registration(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ve, ok := AsValidationError(Register{Email: "ana@example.com", Password: "abc"}.Validate())
	if !ok {
		t.Fatal("expected ValidationError for missing username")
	}
	if ve.Field("username") == "" {
		t.Error("expected username error")
	}

	long := make([]byte, 71)
	for i := range long {
		long[i] = 'a'
	}
	if _, ok := AsValidationError(Register{Username: string(long), Email: "ana@example.com", Password: "abc"}.Validate()); !ok {
		t.Error("expected error for 71-character username")
	}
}

func ptr(s string) *string { return &s }

func TestTaskChanges_OnlyGivenFields(t *testing.T) {
	p, err := TaskChanges{Status: ptr("DONE"), Title: ptr("  Renamed ")}.Patch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status == nil || *p.Status != service.StatusDone {
		t.Errorf("status = %v", p.Status)
	}
	if p.Title == nil || *p.Title != "Renamed" {
		t.Errorf("title = %v", p.Title)
	}
	if p.Description != nil || p.Priority != nil || p.Difficulty != nil || p.DueDate != nil {
		t.Errorf("unexpected fields in patch %+v", p)
	}
}

func TestTaskChanges_Empty(t *testing.T) {
	p, err := TaskChanges{}.Patch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsEmpty() {
		t.Errorf("expected empty patch, got %+v", p)
	}
}

func TestTaskChanges_InvalidFields(t *testing.T) {
	_, err := TaskChanges{Title: ptr(" "), Difficulty: ptr("trivial")}.Patch()
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Errors) != 2 || ve.Errors[0].Field != "title" || ve.Errors[1].Field != "difficulty" {
		t.Errorf("unexpected errors %+v", ve.Errors)
	}
}

func TestTaskChanges_DueDate(t *testing.T) {
	p, err := TaskChanges{DueDate: ptr("2024-07-04")}.Patch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.DueDate == nil || p.DueDate.Format(service.DateLayout) != "2024-07-04" {
		t.Errorf("due = %v", p.DueDate)
	}

	_, err = TaskChanges{DueDate: ptr("July 4th")}.Patch()
	if ve, ok := AsValidationError(err); !ok || ve.Field("due_date") == "" {
		t.Errorf("expected due_date error, got %v", err)
	}
}
