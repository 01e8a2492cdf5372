package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/pagination"
)

func TestServiceUpdateNormalizesInput(t *testing.T) {
	store := newMemoryStore()
	u := store.put(User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	service := NewService(store)

	email, first := "  ADA@Example.org ", " Augusta "
	updated, err := service.Update(context.Background(), u.ID, UpdateInput{Email: &email, FirstName: &first})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	if updated.Email != "ada@example.org" || updated.FirstName != "Augusta" || updated.LastName != "Lovelace" {
		t.Fatalf("unexpected user %+v", updated)
	}
}

func TestServiceUpdateValidatesTrimmedNames(t *testing.T) {
	store := newMemoryStore()
	u := store.put(User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	service := NewService(store)

	short, blank, long := " a ", "     ", strings.Repeat("x", MaxNameLength+1)
	cases := []struct {
		input UpdateInput
		field string
	}{
		{UpdateInput{FirstName: &short}, "firstName"},
		{UpdateInput{LastName: &blank}, "lastName"},
		{UpdateInput{FirstName: &long}, "firstName"},
	}
	for _, tc := range cases {
		_, err := service.Update(context.Background(), u.ID, tc.input)
		var inputErr *InputError
		if !errors.As(err, &inputErr) || inputErr.Field != tc.field || !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid %s, got %v", tc.field, err)
		}
	}

	stored, _ := store.FindByID(context.Background(), u.ID)
	if stored.FirstName != "Ada" || stored.LastName != "Lovelace" {
		t.Fatalf("rejected update reached the store: %+v", stored)
	}
}

func TestServiceUpdateEmailTaken(t *testing.T) {
	store := newMemoryStore()
	store.put(User{Email: "taken@example.com", FirstName: "Ada", LastName: "Lovelace"})
	u := store.put(User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	service := NewService(store)

	email := "taken@example.com"
	if _, err := service.Update(context.Background(), u.ID, UpdateInput{Email: &email}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestServiceNotFound(t *testing.T) {
	service := NewService(newMemoryStore())
	id := uuid.New()

	if _, err := service.Get(context.Background(), id); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Get: expected ErrUserNotFound, got %v", err)
	}
	if err := service.Delete(context.Background(), id); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Delete: expected ErrUserNotFound, got %v", err)
	}
	if _, err := service.ToggleAdmin(context.Background(), id); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ToggleAdmin: expected ErrUserNotFound, got %v", err)
	}
}

func TestServiceToggles(t *testing.T) {
	store := newMemoryStore()
	u := store.put(User{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", IsAuthor: true})
	service := NewService(store)

	toggled, err := service.ToggleAuthor(context.Background(), u.ID)
	if err != nil || toggled.IsAuthor {
		t.Fatalf("expected author flag cleared, got %+v (%v)", toggled, err)
	}
	toggled, err = service.ToggleAdmin(context.Background(), u.ID)
	if err != nil || !toggled.IsAdmin {
		t.Fatalf("expected admin flag set, got %+v (%v)", toggled, err)
	}
}

func TestServiceListPages(t *testing.T) {
	store := newMemoryStore()
	for i := 0; i < 5; i++ {
		store.put(User{Email: uuid.NewString() + "@example.com", FirstName: "Ada", LastName: "Lovelace"})
	}
	service := NewService(store)

	users, total, err := service.List(context.Background(), pagination.New(2, 2))
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if total != 5 || len(users) != 2 {
		t.Fatalf("expected 2 of 5 users, got %d of %d", len(users), total)
	}

	users, _, _ = service.List(context.Background(), pagination.New(3, 2))
	if len(users) != 1 {
		t.Fatalf("expected last page to hold 1 user, got %d", len(users))
	}
}

// memoryStore implements userStore for tests.
type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]User
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[uuid.UUID]User)}
}

func (m *memoryStore) put(u User) User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().Add(time.Duration(len(m.users)) * time.Millisecond)
	}
	m.users[u.ID] = u
	return u
}

func (m *memoryStore) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, 0, m.err
	}
	all := make([]User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return []User{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *memoryStore) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryStore) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if input.Email != nil {
		for _, other := range m.users {
			if other.ID != id && other.Email == *input.Email {
				return User{}, ErrEmailTaken
			}
		}
		u.Email = *input.Email
	}
	if input.FirstName != nil {
		u.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		u.LastName = *input.LastName
	}
	m.users[id] = u
	return u, nil
}

func (m *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryStore) ToggleAuthor(ctx context.Context, id uuid.UUID) (User, error) {
	return m.toggle(id, func(u *User) { u.IsAuthor = !u.IsAuthor })
}

func (m *memoryStore) ToggleAdmin(ctx context.Context, id uuid.UUID) (User, error) {
	return m.toggle(id, func(u *User) { u.IsAdmin = !u.IsAdmin })
}

func (m *memoryStore) toggle(id uuid.UUID, flip func(*User)) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	flip(&u)
	m.users[id] = u
	return u, nil
}
