// Package common defines shared constants and sentinel errors used across
// client and server layers of premiumkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorForbidden       = errors.New("forbidden")
	ErrorValidation      = errors.New("validation error")

	// Transport errors: the server could not be reached or answered 5xx.
	ErrorUnavailable = errors.New("service unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
