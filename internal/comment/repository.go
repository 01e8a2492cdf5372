package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

// Repository persists comments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByPost returns a page of comments on a published post, oldest first.
func (r *Repository) ListByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]Comment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var total int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(c.id)
FROM posts p
LEFT JOIN comments c ON c.post_id = p.id
WHERE p.id = $1 AND p.is_published
GROUP BY p.id;`, postID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrPostNotFound
		}
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT c.id, c.post_id, c.author_id, u.first_name || ' ' || u.last_name, c.content, c.created_at
FROM comments c
JOIN users u ON u.id = c.author_id
WHERE c.post_id = $1
ORDER BY c.created_at, c.id
LIMIT $2 OFFSET $3;`, postID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0, limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, total, nil
}

// Create adds a comment to a published post.
func (r *Repository) Create(ctx context.Context, postID, authorID uuid.UUID, content string) (Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
WITH inserted AS (
    INSERT INTO comments (post_id, author_id, content)
    SELECT $1, $2, $3
    WHERE EXISTS (SELECT 1 FROM posts WHERE id = $1 AND is_published)
    RETURNING *
)
SELECT c.id, c.post_id, c.author_id, u.first_name || ' ' || u.last_name, c.content, c.created_at
FROM inserted c
JOIN users u ON u.id = c.author_id;`

	c, err := scanComment(r.pool.QueryRow(ctx, query, postID, authorID, content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, ErrPostNotFound
		}
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// Delete removes a comment.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// Owner returns the author of a comment.
func (r *Repository) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var owner uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM comments WHERE id = $1;`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("find comment owner: %w", err)
	}
	return owner, true, nil
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt)
	return c, err
}
