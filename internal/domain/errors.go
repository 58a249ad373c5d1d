package domain

import "errors"

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation, such as a taken email.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken indicates a request without a bearer token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotFound is returned when a record does not exist or is owned by
	// someone else.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps any failure of the underlying store.
	ErrStorage = errors.New("storage failure")
)
