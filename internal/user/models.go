package user

import (
	"time"

	"github.com/google/uuid"
)

// Name length bounds, counted in runes after trimming.
const (
	MinNameLength = 2
	MaxNameLength = 64
)

// User is the public account record managed by this package.
type User struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	IsAuthor  bool
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UpdateInput holds the profile fields to change. Nil fields are left as is.
type UpdateInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}
