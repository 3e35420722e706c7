package domain

import "errors"

var (
	// ErrValidation marks input that was rejected before anything was written.
	ErrValidation = errors.New("validation error")
	// ErrPermission marks an actor mutating a resource it does not own.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound marks an unknown entity in lookups that must not be silent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
