package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUser is returned when a username or email is already taken
	ErrDuplicateUser = errors.New("user with this username or email already exists")

	// ErrTokenMismatch is returned by RotateRefreshToken when the stored
	// refresh token no longer matches the expected value, i.e. the token was
	// already rotated away or revoked.
	ErrTokenMismatch = errors.New("stored refresh token does not match")
)
