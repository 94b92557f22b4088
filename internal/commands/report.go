package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"taskflow/internal/board"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/form"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

// LoginHint is printed when a command needs a session and none is usable.
const LoginHint = "not logged in (run: taskflow login)"

// ExpiredHint is printed when the stored session has expired.
const ExpiredHint = "session expired (run: taskflow login)"

// report prints err and returns the matching exit code.
//
// Validation errors print one "error: <field>: <message>" line per field.
// A session rejected by the server is marked invalidated in the store so
// the next command asks for a new login.
func report(cfg *config.Config, errOut io.Writer, err error) int {
	if verr, ok := form.AsValidationError(err); ok {
		for _, fe := range verr.Errors {
			fmt.Fprintf(errOut, "error: %s: %s\n", fe.Field, fe.Message)
		}
		return exitcode.UserError
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, board.ErrClosed):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.BackendError
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, session.ErrExpired):
		fmt.Fprintf(errOut, "error: %s\n", ExpiredHint)
		return exitcode.AuthError
	case errors.Is(err, service.ErrNoSession):
		fmt.Fprintf(errOut, "error: %s\n", LoginHint)
		return exitcode.AuthError
	case errors.Is(err, service.ErrUnauthorized):
		invalidateSession(cfg)
		fmt.Fprintf(errOut, "error: %v (run: taskflow login)\n", err)
		return exitcode.AuthError
	}

	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// reportTask is like report but names the task for a not-found error.
func reportTask(cfg *config.Config, errOut io.Writer, id int, err error) int {
	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}
	return report(cfg, errOut, err)
}

func invalidateSession(cfg *config.Config) {
	store := sessionStore(cfg)
	s, err := store.Load()
	if err != nil {
		return
	}
	s.Invalidate()
	_ = store.Save(s)
}

func sessionStore(cfg *config.Config) *session.FileStore {
	return session.NewFileStore(cfg.SessionPath())
}
