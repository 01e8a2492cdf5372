package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/pagination"
)

type userStore interface {
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (User, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleAuthor(ctx context.Context, id uuid.UUID) (User, error)
	ToggleAdmin(ctx context.Context, id uuid.UUID) (User, error)
}

// Service implements user management.
type Service struct {
	store userStore
}

// NewService creates a Service.
func NewService(store userStore) *Service {
	return &Service{store: store}
}

// List returns one page of users and the total count.
func (s *Service) List(ctx context.Context, page pagination.Params) ([]User, int, error) {
	users, total, err := s.store.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.wrap(s.store.FindByID(ctx, id))
}

// Update changes profile fields. Emails are stored lowercased.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (User, error) {
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &email
	}
	input.FirstName = trimmed(input.FirstName)
	input.LastName = trimmed(input.LastName)
	if err := validateUpdate(input); err != nil {
		return User{}, err
	}

	user, err := s.store.Update(ctx, id, input)
	if errors.Is(err, ErrEmailTaken) {
		return User{}, ErrEmailTaken
	}
	return s.wrap(user, err)
}

// Delete removes the user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ToggleAuthor flips the user's permission to write posts.
func (s *Service) ToggleAuthor(ctx context.Context, id uuid.UUID) (User, error) {
	return s.wrap(s.store.ToggleAuthor(ctx, id))
}

// ToggleAdmin flips the user's admin privileges.
func (s *Service) ToggleAdmin(ctx context.Context, id uuid.UUID) (User, error) {
	return s.wrap(s.store.ToggleAdmin(ctx, id))
}

func (s *Service) wrap(user User, err error) (User, error) {
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("user store: %w", err)
	}
	return user, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func validateUpdate(input UpdateInput) error {
	if input.Email != nil && !strings.Contains(*input.Email, "@") {
		return &InputError{Field: "email", Msg: "must be a valid email"}
	}
	if err := validateName("firstName", input.FirstName); err != nil {
		return err
	}
	return validateName("lastName", input.LastName)
}

func validateName(field string, value *string) error {
	if value == nil {
		return nil
	}
	if n := utf8.RuneCountInString(*value); n < MinNameLength || n > MaxNameLength {
		return &InputError{
			Field: field,
			Msg:   fmt.Sprintf("must be between %d and %d characters", MinNameLength, MaxNameLength),
		}
	}
	return nil
}
