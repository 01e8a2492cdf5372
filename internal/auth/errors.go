package auth

import "errors"

var (
	// ErrEmailAlreadyExists indicates the email is already registered.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrInvalidCredentials is returned when authentication fails. Unknown
	// emails and wrong passwords both map to it.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed headers, bad signatures, expired tokens
	// and refresh tokens that are no longer bound to their owner.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound signals that the user could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshTokenNotFound signals a missing or expired refresh token record.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrTooManyAttempts is returned while an email is locked out after repeated
	// failed logins.
	ErrTooManyAttempts = errors.New("too many login attempts")
	// ErrMissingSecret is returned when a signer is built without a key.
	ErrMissingSecret = errors.New("token secret must not be empty")
)
