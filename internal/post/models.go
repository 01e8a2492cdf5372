package post

import (
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength bounds a post title, counted in runes.
const MaxTitleLength = 200

// Post is a blog entry. Drafts are visible only to their author and admins.
type Post struct {
	ID          uuid.UUID
	AuthorID    uuid.UUID
	AuthorName  string
	Title       string
	Content     string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Input carries the editable fields of a post.
type Input struct {
	Title       string
	Content     string
	IsPublished bool
}

// Visibility selects which posts a listing may return.
type Visibility struct {
	// AllDrafts includes every unpublished post.
	AllDrafts bool
	// DraftsOf includes unpublished posts by this author when set.
	DraftsOf *uuid.UUID
}
