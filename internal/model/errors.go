package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrAlreadyInSession = errors.New("connection is already in a session")
	ErrNotInSession     = errors.New("connection is not in a session")

	// Protocol errors
	ErrInvalidEvent = errors.New("invalid event")
)
