// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyRegistered is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrUsernameTaken is returned when attempting to create a user with a username that already exists.
	ErrUsernameTaken = errors.New("username taken")

	// ErrInvalidCredentials is returned on login when the email is unknown or the password does not match.
	// Callers must not be able to tell the two cases apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UsernameTakenError wraps ErrUsernameTaken with a free alternative username
// the caller can offer to the user.
type UsernameTakenError struct {
	Username   string
	Suggestion string
}

func (e *UsernameTakenError) Error() string {
	return fmt.Sprintf("username %q is taken (suggestion: %q)", e.Username, e.Suggestion)
}

// Unwrap allows errors.Is(err, ErrUsernameTaken) to match.
func (e *UsernameTakenError) Unwrap() error { return ErrUsernameTaken }
