package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a capability bit held by a user.
type Role uint8

const (
	// RoleAuthor allows creating posts.
	RoleAuthor Role = 1 << iota
	// RoleAdmin bypasses ownership checks and manages other users' roles.
	RoleAdmin
)

// Has reports whether every bit of want is present.
func (r Role) Has(want Role) bool {
	return want != 0 && r&want == want
}

func (r Role) String() string {
	var names []string
	if r.Has(RoleAuthor) {
		names = append(names, "author")
	}
	if r.Has(RoleAdmin) {
		names = append(names, "admin")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// User represents an application user.
type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string
	FirstName      string
	LastName       string
	IsAuthor       bool
	IsAdmin        bool
	RefreshTokenID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Roles derives the capability set from the stored flags.
func (u User) Roles() Role {
	var r Role
	if u.IsAuthor {
		r |= RoleAuthor
	}
	if u.IsAdmin {
		r |= RoleAdmin
	}
	return r
}

// SafeUser removes sensitive fields for response payloads and request context.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	u.RefreshTokenID = nil
	return u
}

// NewUser carries the fields needed to insert a user.
type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// RefreshToken is the store record a refresh bearer token is bound to.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenPair bundles access and refresh tokens.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}
