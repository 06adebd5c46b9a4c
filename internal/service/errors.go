package service

import "errors"

// Auth failure taxonomy. Handlers map these onto HTTP statuses; everything
// not listed here surfaces as an internal error.
var (
	// ErrInvalidInput is returned for malformed or missing request fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// at login; the two are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username/email or password")

	// ErrTokenInvalid covers bad signature, expiry and malformed claims.
	// Callers must not learn which one failed.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrTokenReused marks a refresh token that is cryptographically valid
	// but no longer matches the persisted value: it was rotated away or
	// revoked, and is being replayed.
	ErrTokenReused = errors.New("refresh token expired or already used")

	// ErrDuplicateUser is returned at registration for a taken username or email.
	ErrDuplicateUser = errors.New("user with this username or email already exists")
)
