//go:build integration

package post

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/storage/storagetest"
	"github.com/jackc/pgx/v5/pgxpool"
)

func insertUser(t *testing.T, pool *pgxpool.Pool, email string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, password_hash, first_name, last_name) VALUES ($1, 'x', 'Ada', 'Lovelace') RETURNING id;`,
		email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func TestRepositoryVisibilityAndCRUD(t *testing.T) {
	pool := storagetest.NewPool(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	alice := insertUser(t, pool, "alice@example.com")
	bob := insertUser(t, pool, "bob@example.com")

	live, err := repo.Create(ctx, alice, Input{Title: "live", Content: "c", IsPublished: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if live.AuthorName != "Ada Lovelace" {
		t.Fatalf("expected joined author name, got %q", live.AuthorName)
	}
	if _, err := repo.Create(ctx, alice, Input{Title: "draft", Content: "c"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name string
		vis  Visibility
		want int
	}{
		{"anonymous", Visibility{}, 1},
		{"alice", Visibility{DraftsOf: &alice}, 2},
		{"bob", Visibility{DraftsOf: &bob}, 1},
		{"admin", Visibility{AllDrafts: true}, 2},
	}
	for _, tc := range cases {
		posts, total, err := repo.List(ctx, tc.vis, 10, 0)
		if err != nil || total != tc.want || len(posts) != tc.want {
			t.Fatalf("%s: %d posts, total %d (%v)", tc.name, len(posts), total, err)
		}
	}

	owner, found, err := repo.Owner(ctx, live.ID)
	if err != nil || !found || owner != alice {
		t.Fatalf("Owner: %s %v %v", owner, found, err)
	}
	if _, found, _ := repo.Owner(ctx, uuid.New()); found {
		t.Fatalf("expected missing post to be reported as not found")
	}

	updated, err := repo.Update(ctx, live.ID, Input{Title: "edited", Content: "c2"})
	if err != nil || updated.Title != "edited" || updated.IsPublished {
		t.Fatalf("Update: %+v (%v)", updated, err)
	}

	if err := repo.Delete(ctx, live.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, live.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}
