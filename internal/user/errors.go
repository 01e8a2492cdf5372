package user

import "errors"

var (
	// ErrUserNotFound signals that the user could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an update collides with another account's email.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidInput is matched by every InputError.
	ErrInvalidInput = errors.New("invalid user input")
)

// InputError names a profile field that is invalid after trimming.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	return e.Field + " " + e.Msg
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
