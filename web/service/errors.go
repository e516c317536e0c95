package service

import "errors"

// Error kinds of the portal API. Handlers translate these to HTTP statuses;
// everything is wrapped with fmt.Errorf("%w: ...") so errors.Is keeps working.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnknownUser     = errors.New("unknown user")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
)
