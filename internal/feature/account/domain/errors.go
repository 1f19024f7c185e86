// Package domain defines the error taxonomy shared by the account feature.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the account usecase matches exactly one
// of these with errors.Is.
var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates a uniqueness violation or an update that changed nothing.
	ErrConflict = errors.New("conflict error")

	// ErrAuth indicates a missing, invalid or expired credential.
	ErrAuth = errors.New("authentication error")

	// ErrAccessDenied indicates an authenticated caller without the required role.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound indicates that the referenced account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInternal indicates a store or infrastructure failure.
	ErrInternal = errors.New("internal error")
)

// User-visible messages.
const (
	MsgMissingField      = "missing mandatory field"
	MsgLocation          = "location not serviceable"
	MsgInvalidRole       = "invalid role"
	MsgRoleRequired      = "new role is required"
	MsgInvalidActive     = "invalid active status"
	MsgInvalidStatus     = "invalid value passed while disabling or enabling"
	MsgInvalidFilter     = "invalid format of profile status"
	MsgCredentials       = "email and password are required"
	MsgUsernameInUse     = "username in use"
	MsgEmailInUse        = "email in use"
	MsgNoValueUpdated    = "no value updated"
	MsgInvalidLogin      = "invalid credentials"
	MsgAccountDisabled   = "account disabled"
	MsgHeaderNotFound    = "authorization header not found"
	MsgInvalidFormat     = "invalid token format"
	MsgInvalidToken      = "invalid or expired token"
	MsgRoleDenied        = "access denied: you do not have the required role"
	MsgAccountNotFound   = "account not found"
	MsgInternal          = "something went wrong"
	MsgEmptyProfileField = "first name and last name cannot be empty"
	MsgInvalidBody       = "invalid request body"
	MsgPasswordTooLong   = "password must be at most 72 bytes long"
)

// Error is a classified failure carrying a human-readable message.
// Kind is one of the Err* sentinels above; Err is the optional cause and is
// never shown to callers.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation returns an ErrValidation error.
func Validation(msg string) *Error { return newError(ErrValidation, msg) }

// Conflict returns an ErrConflict error.
func Conflict(msg string) *Error { return newError(ErrConflict, msg) }

// Auth returns an ErrAuth error.
func Auth(msg string) *Error { return newError(ErrAuth, msg) }

// AccessDenied returns an ErrAccessDenied error.
func AccessDenied(msg string) *Error { return newError(ErrAccessDenied, msg) }

// NotFound returns an ErrNotFound error.
func NotFound(msg string) *Error { return newError(ErrNotFound, msg) }

// Internal wraps an unexpected failure. The cause stays available to
// errors.Is for logging but the message is generic.
func Internal(cause error) *Error {
	return &Error{Kind: ErrInternal, Message: MsgInternal, Err: cause}
}

// Message returns the user-visible message of err. Unclassified errors
// yield the generic internal message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(e.Kind, ErrInternal) {
		return e.Message
	}
	return MsgInternal
}
