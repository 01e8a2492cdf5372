package comment

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength bounds a comment body in characters.
const MaxContentLength = 280

// Comment is a reader's reply to a published post.
type Comment struct {
	ID         uuid.UUID
	PostID     uuid.UUID
	AuthorID   uuid.UUID
	AuthorName string
	Content    string
	CreatedAt  time.Time
}
