package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates invalid or contradictory operator configuration.
	// Configuration errors are surfaced immediately and never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Channel Errors.

	// ErrChannelCreate indicates a new notification channel could not be registered.
	// The caller must not continue with the previous channel.
	ErrChannelCreate = errors.New("channel creation failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
