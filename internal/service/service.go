// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All content API calls go through this interface.
// Commands and views never talk HTTP directly.
type Service interface {
	// Login authenticates with an email (or username) and password.
	Login(ctx context.Context, creds Credentials) (Auth, error)

	// Register creates an account and authenticates it.
	Register(ctx context.Context, reg Registration) (Auth, error)

	// CreateTask creates a task and returns the stored record.
	// Requires a session in ctx.
	CreateTask(ctx context.Context, fields TaskFields) (Task, error)

	// ListTasks returns all tasks visible to the session in API order.
	// Requires a session in ctx.
	ListTasks(ctx context.Context) ([]Task, error)

	// UpdateTask applies a partial update and returns the updated record.
	// Requires a session in ctx.
	UpdateTask(ctx context.Context, id int, patch TaskPatch) (Task, error)

	// DeleteTask removes a task.
	// Requires a session in ctx.
	DeleteTask(ctx context.Context, id int) error
}
