package service

import "errors"

var (
	// ErrNoSession is returned when a task operation runs without a usable session.
	ErrNoSession = errors.New("not logged in")

	// ErrUnauthorized is returned when the backend rejects the session credential.
	ErrUnauthorized = errors.New("session rejected by server")

	// ErrInvalidCredentials is returned when login or registration is refused.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("not found")
)
