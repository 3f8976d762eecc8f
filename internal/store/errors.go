package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the stores. Handlers map these to HTTP
// responses; the stores never touch gin.
var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrForbidden means the requester is not the owner of the record.
	ErrForbidden = errors.New("store: requester is not the owner")
	// ErrUsernameTaken / ErrEmailTaken report uniqueness conflicts.
	ErrUsernameTaken = errors.New("store: username already taken")
	ErrEmailTaken    = errors.New("store: email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong
	// password so login failures never reveal which one it was.
	ErrInvalidCredentials = errors.New("store: invalid email or password")
)

// ValidationError reports a malformed field. It is attached to a single
// field so forms can re-render with the message next to the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("store: %s: %s", e.Field, e.Message)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken)
}
