// Package authtest provides an in-memory credential store and helpers for
// exercising handlers behind the auth middleware.
package authtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/config"
)

// Secret signs every token issued by NewService.
const Secret = "authtest-secret"

// Store is an in-memory implementation of the auth credential store.
type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]auth.User
	tokens map[uuid.UUID]auth.RefreshToken
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:  make(map[uuid.UUID]auth.User),
		tokens: make(map[uuid.UUID]auth.RefreshToken),
	}
}

// NewService builds an auth.Service over a fresh Store.
func NewService(t *testing.T) (*auth.Service, *Store) {
	t.Helper()

	signer, err := auth.NewTokenSigner(Secret)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}
	store := NewStore()
	service := auth.NewService(store, signer, config.AuthConfig{
		TokenSecret:     Secret,
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		BcryptCost:      4,
	})
	return service, store
}

// Seed inserts a user with the given roles and returns it.
func (s *Store) Seed(email string, roles auth.Role) auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := auth.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		IsAuthor:  roles.Has(auth.RoleAuthor),
		IsAdmin:   roles.Has(auth.RoleAdmin),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.users[user.ID] = user
	return user
}

// Remove deletes a user.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Bearer returns an Authorization header value for userID.
func Bearer(t *testing.T, service *auth.Service, userID uuid.UUID) string {
	t.Helper()

	token, _, err := service.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return "Bearer " + token
}

func (s *Store) CreateUser(ctx context.Context, input auth.NewUser) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == input.Email {
			return auth.User{}, auth.ErrEmailAlreadyExists
		}
	}
	user := auth.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsAuthor:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) RotateRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[token.UserID]
	if !ok {
		return auth.ErrUserNotFound
	}
	for id, existing := range s.tokens {
		if existing.UserID == token.UserID {
			delete(s.tokens, id)
		}
	}
	s.tokens[token.ID] = token
	id := token.ID
	user.RefreshTokenID = &id
	s.users[user.ID] = user
	return nil
}

func (s *Store) FindRefreshToken(ctx context.Context, id uuid.UUID) (auth.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[id]
	if !ok {
		return auth.RefreshToken{}, auth.ErrRefreshTokenNotFound
	}
	return token, nil
}

func (s *Store) RevokeSession(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		user.RefreshTokenID = nil
		s.users[userID] = user
	}
	for id, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *Store) PurgeExpiredRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, token := range s.tokens {
		if !token.ExpiresAt.After(cutoff) {
			delete(s.tokens, id)
			purged++
		}
	}
	return purged, nil
}
