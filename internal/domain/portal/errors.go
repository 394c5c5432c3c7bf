package portal

import "errors"

var (
	ErrInvalidView     = errors.New("Invalid portal view")
	ErrSessionNotFound = errors.New("Portal session not found")
)
