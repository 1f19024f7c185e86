// Package usecase implements the business logic for the account feature.
package usecase

import "errors"

// Store-level errors. Repository implementations return these so the usecase
// can classify failures without knowing the storage engine.
var (
	// ErrAccountNotFound is returned when no account matches the given id, username or email.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUsernameTaken is returned when an insert violates the username unique index.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrEmailTaken is returned when an insert violates the email unique index.
	ErrEmailTaken = errors.New("email already exists")

	// ErrNoChange is returned when a conditional update matched the account
	// but changed nothing.
	ErrNoChange = errors.New("no rows updated")
)
