package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/pagination"
)

type postStore interface {
	List(ctx context.Context, vis Visibility, limit, offset int) ([]Post, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (Post, error)
	Create(ctx context.Context, authorID uuid.UUID, input Input) (Post, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error)
}

// Service implements post use cases.
type Service struct {
	store postStore
}

// NewService creates a Service.
func NewService(store postStore) *Service {
	return &Service{store: store}
}

// VisibilityFor returns what viewer may list. A nil viewer is anonymous.
func VisibilityFor(viewer *auth.User) Visibility {
	switch {
	case viewer == nil:
		return Visibility{}
	case viewer.Roles().Has(auth.RoleAdmin):
		return Visibility{AllDrafts: true}
	default:
		id := viewer.ID
		return Visibility{DraftsOf: &id}
	}
}

// List returns one page of posts visible to viewer.
func (s *Service) List(ctx context.Context, viewer *auth.User, page pagination.Params) ([]Post, int, error) {
	posts, total, err := s.store.List(ctx, VisibilityFor(viewer), page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

// Get returns a post if viewer may see it. Hidden drafts read as missing.
func (s *Service) Get(ctx context.Context, viewer *auth.User, id uuid.UUID) (Post, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("find post: %w", err)
	}
	if !canSee(viewer, p) {
		return Post{}, ErrPostNotFound
	}
	return p, nil
}

// Create stores a new post for authorID.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, input Input) (Post, error) {
	input, err := normalize(input)
	if err != nil {
		return Post{}, err
	}
	p, err := s.store.Create(ctx, authorID, input)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Update replaces a post's title, content and published state.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (Post, error) {
	input, err := normalize(input)
	if err != nil {
		return Post{}, err
	}
	p, err := s.store.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes a post.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Owner reports the author of a post, for ownership checks.
func (s *Service) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	return s.store.Owner(ctx, id)
}

func canSee(viewer *auth.User, p Post) bool {
	if p.IsPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.Roles().Has(auth.RoleAdmin) || viewer.ID == p.AuthorID
}

func normalize(input Input) (Input, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)

	switch {
	case input.Title == "":
		return Input{}, &InputError{Field: "title", Msg: "must not be blank"}
	case utf8.RuneCountInString(input.Title) > MaxTitleLength:
		return Input{}, &InputError{Field: "title", Msg: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	case input.Content == "":
		return Input{}, &InputError{Field: "content", Msg: "must not be blank"}
	}
	return input, nil
}
