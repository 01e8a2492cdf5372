package comment

import "errors"

var (
	// ErrCommentNotFound signals that the comment could not be located.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrPostNotFound is returned when the target post is missing or unpublished.
	ErrPostNotFound = errors.New("post not found")
)
