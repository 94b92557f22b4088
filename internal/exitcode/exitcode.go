// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, invalid form, task not found).
	UserError = 1

	// AuthError indicates a missing, expired or rejected session, or bad credentials.
	AuthError = 2

	// BackendError indicates a backend/network error or a cancelled request.
	BackendError = 3
)
