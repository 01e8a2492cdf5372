package comment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/pagination"
)

// ErrInvalidContent is returned for empty or oversized comment bodies.
var ErrInvalidContent = errors.New("comment content must be 1-280 characters")

type commentStore interface {
	ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]Comment, int, error)
	Create(ctx context.Context, postID, authorID uuid.UUID, content string) (Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error)
}

// Service implements comment use cases.
type Service struct {
	store commentStore
}

// NewService creates a Service.
func NewService(store commentStore) *Service {
	return &Service{store: store}
}

// List returns a page of comments on a published post.
func (s *Service) List(ctx context.Context, postID uuid.UUID, page pagination.Params) ([]Comment, int, error) {
	comments, total, err := s.store.ListByPost(ctx, postID, page.Limit, page.Offset())
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, 0, ErrPostNotFound
		}
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

// Create posts a comment by authorID on a published post.
func (s *Service) Create(ctx context.Context, postID, authorID uuid.UUID, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > MaxContentLength {
		return Comment{}, ErrInvalidContent
	}

	c, err := s.store.Create(ctx, postID, authorID, content)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return Comment{}, ErrPostNotFound
		}
		return Comment{}, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// Owner reports the author of a comment, for ownership checks.
func (s *Service) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	return s.store.Owner(ctx, id)
}
