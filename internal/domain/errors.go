package domain

import "errors"

var (
	// ErrInvalidCodeLength is returned when the sanitized code is not exactly six digits.
	ErrInvalidCodeLength = errors.New("access code must be 6 digits")
	// ErrCodeNotFound is returned when no single share record matches a code.
	ErrCodeNotFound = errors.New("quiz not found or invalid code")
	// ErrCreatorNameUnresolved is the soft failure behind the "Unknown" creator fallback.
	ErrCreatorNameUnresolved = errors.New("creator name unresolved")
	// ErrNotYetOpen is returned when a share record's start time is in the future.
	ErrNotYetOpen = errors.New("quiz not yet available")
	// ErrExpired is returned when a share record's expiry time has passed.
	ErrExpired = errors.New("quiz expired")
	// ErrNameRequired is returned when a guest submits an empty name.
	ErrNameRequired = errors.New("name is required")
	// ErrSessionCheckFailed wraps auth provider failures; callers treat it as "no session".
	ErrSessionCheckFailed = errors.New("session check failed")
	// ErrNetworkTimeout is returned when a backend lookup exceeds its deadline.
	ErrNetworkTimeout = errors.New("network timeout")
	// ErrQuizNotFound indicates a quiz id is unknown or not owned by the caller.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrShareNotFound indicates a share id is unknown or not owned by the caller.
	ErrShareNotFound = errors.New("share not found")
	// ErrHandoffNotFound indicates a handoff ticket is unknown, expired or already taken.
	ErrHandoffNotFound = errors.New("handoff not found")
)
