package shared

import "errors"

var (
	// ErrNotFound indicates a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a unique key would be duplicated.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput indicates a bad sort field, status value or malformed filter.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage indicates a transaction could not be started or committed.
	ErrStorage = errors.New("storage error")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks the required role or capability.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsDomain reports whether err belongs to the client-facing taxonomy.
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidInput)
}
