package post

import "errors"

var (
	// ErrPostNotFound signals a missing post, or a draft the caller may not see.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidInput is matched by every InputError.
	ErrInvalidInput = errors.New("invalid post input")
)

// InputError names a field that is invalid once surrounding whitespace is removed.
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
