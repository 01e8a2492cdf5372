package post

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

const selectPosts = `
SELECT p.id, p.author_id, u.first_name || ' ' || u.last_name, p.title, p.content, p.is_published, p.created_at, p.updated_at
FROM %s p
JOIN users u ON u.id = p.author_id`

const visibleClause = `(p.is_published OR $1 OR p.author_id = $2)`

// Repository persists posts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns posts allowed by vis, newest first, with the total count.
func (r *Repository) List(ctx context.Context, vis Visibility, limit, offset int) ([]Post, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var total int
	count := `SELECT COUNT(*) FROM posts p WHERE ` + visibleClause + `;`
	if err := r.pool.QueryRow(ctx, count, vis.AllDrafts, vis.DraftsOf).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	query := fmt.Sprintf(selectPosts, "posts") + `
WHERE ` + visibleClause + `
ORDER BY p.created_at DESC, p.id
LIMIT $3 OFFSET $4;`

	rows, err := r.pool.Query(ctx, query, vis.AllDrafts, vis.DraftsOf, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, total, nil
}

// FindByID fetches a post regardless of its published state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := fmt.Sprintf(selectPosts, "posts") + ` WHERE p.id = $1;`
	p, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// Create inserts a post owned by authorID.
func (r *Repository) Create(ctx context.Context, authorID uuid.UUID, input Input) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
WITH inserted AS (
    INSERT INTO posts (author_id, title, content, is_published)
    VALUES ($1, $2, $3, $4)
    RETURNING *
)` + fmt.Sprintf(selectPosts, "inserted") + `;`

	p, err := scanPost(r.pool.QueryRow(ctx, query, authorID, input.Title, input.Content, input.IsPublished))
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	return p, nil
}

// Update replaces the editable fields of a post.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input Input) (Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
WITH updated AS (
    UPDATE posts
    SET title = $2, content = $3, is_published = $4, updated_at = NOW()
    WHERE id = $1
    RETURNING *
)` + fmt.Sprintf(selectPosts, "updated") + `;`

	p, err := scanPost(r.pool.QueryRow(ctx, query, id, input.Title, input.Content, input.IsPublished))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes a post and, by cascade, its comments.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

// Owner returns the author of a post.
func (r *Repository) Owner(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var owner uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1;`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("find post owner: %w", err)
	}
	return owner, true, nil
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorName,
		&p.Title,
		&p.Content,
		&p.IsPublished,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
