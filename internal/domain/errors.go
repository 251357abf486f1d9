package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidMethod and ErrInvalidStravaToken are the only client-facing
	// input errors of the token endpoint.
	ErrInvalidMethod      = errors.New("invalid http method")
	ErrInvalidStravaToken = errors.New("invalid strava token")

	// ErrUpstream marks a failed call to the external provider.
	ErrUpstream = errors.New("upstream provider failure")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
