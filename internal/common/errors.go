// Package common defines shared constants and sentinel errors used across
// client and server layers of storykeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrValidation marks missing or malformed input caught before any I/O.
	ErrValidation = errors.New("validation error")

	// ErrStorageUnavailable is returned when local persistence cannot be
	// opened (read-only media, quota, missing driver). Callers degrade.
	ErrStorageUnavailable = errors.New("local storage unavailable")

	// ErrTimeout is returned when a bounded wait expires first.
	ErrTimeout = errors.New("operation timed out")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrEmailTaken = errors.New("email is already taken")
)
