package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates that a user with this email already exists
	ErrEmailTaken = errors.New("email is already registered")

	// ErrUsernameTaken indicates that a user with this username already exists
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrTokenExpiredOrRevoked indicates that the refresh token exists but
	// may no longer satisfy validation (revoked, rotated, or expired)
	ErrTokenExpiredOrRevoked = errors.New("refresh token is expired or revoked")

	// ErrNoteNotFound indicates that the note does not exist or does not
	// belong to the requesting user. The two cases are deliberately
	// indistinguishable.
	ErrNoteNotFound = errors.New("note not found")
)
