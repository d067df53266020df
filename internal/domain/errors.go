package domain

import "errors"

// Sentinel errors shared by services and repositories. Controllers match them with errors.Is.
var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidInput          = errors.New("invalid input")
	ErrDuplicateRegistration = errors.New("already registered for this event")
	ErrCapacityExceeded      = errors.New("registration limit reached for this event")
	ErrDuplicateUsername     = errors.New("username already in use")
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrSelfModification      = errors.New("cannot modify your own role or status")
)
