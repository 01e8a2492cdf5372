package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newUserRouter(service *Service) *gin.Engine {
	router := gin.New()
	users := router.Group("/users", RequireUser(service))
	users.PATCH("/:id", SelfOrAdmin(service.UserExists), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	users.PATCH("/:id/admin", RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestSelfOrAdminScenarios(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, store := newTestService(t)
	alice := seedUser(t, store, "alice@example.com", "StrongPass1!", false)
	bob := seedUser(t, store, "bob@example.com", "StrongPass1!", false)
	admin := seedUser(t, store, "admin@example.com", "StrongPass1!", true)
	router := newUserRouter(service)

	cases := []struct {
		name   string
		caller uuid.UUID
		target string
		body   string
		want   int
	}{
		{"non-admin editing someone else", alice.ID, bob.ID.String(), `{"firstName":"B"}`, http.StatusForbidden},
		{"non-admin with invalid payload", alice.ID, bob.ID.String(), `{not json`, http.StatusForbidden},
		{"self edit", alice.ID, alice.ID.String(), `{}`, http.StatusOK},
		{"admin editing anyone", admin.ID, bob.ID.String(), `{}`, http.StatusOK},
		{"admin editing missing user", admin.ID, uuid.NewString(), `{}`, http.StatusOK},
		{"missing target", alice.ID, uuid.NewString(), `{}`, http.StatusNotFound},
		{"malformed id", alice.ID, "not-a-uuid", `{}`, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(router, http.MethodPatch, "/users/"+tc.target, bearer(t, service, tc.caller), tc.body)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, store := newTestService(t)
	alice := seedUser(t, store, "alice@example.com", "StrongPass1!", false)
	admin := seedUser(t, store, "admin@example.com", "StrongPass1!", true)
	router := newUserRouter(service)

	rr := serve(router, http.MethodPatch, "/users/"+alice.ID.String()+"/admin", bearer(t, service, alice.ID), "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(router, http.MethodPatch, "/users/"+alice.ID.String()+"/admin", bearer(t, service, admin.ID), "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGatesWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	lookups := 0
	lookup := func(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
		lookups++
		return id, true, nil
	}

	router := gin.New()
	router.DELETE("/posts/:id", OwnerOrAdmin(lookup), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/posts", RequireRole(RoleAuthor), func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := serve(router, http.MethodDelete, "/posts/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = serve(router, http.MethodPost, "/posts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, lookups, "lookup must not run before identity is established")
}

func TestOwnerOrAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, store := newTestService(t)
	author := seedUser(t, store, "author@example.com", "StrongPass1!", false)
	other := seedUser(t, store, "other@example.com", "StrongPass1!", false)
	admin := seedUser(t, store, "admin@example.com", "StrongPass1!", true)

	postID := uuid.New()
	brokenID := uuid.New()
	lookup := func(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
		switch id {
		case postID:
			return author.ID, true, nil
		case brokenID:
			return uuid.Nil, false, errors.New("db down")
		}
		return uuid.Nil, false, nil
	}

	router := gin.New()
	router.PUT("/posts/:id", RequireUser(service), OwnerOrAdmin(lookup), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPut, "/posts/"+postID.String(), bearer(t, service, author.ID), "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPut, "/posts/"+postID.String(), bearer(t, service, other.ID), "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPut, "/posts/"+postID.String(), bearer(t, service, admin.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPut, "/posts/"+uuid.NewString(), bearer(t, service, other.ID), "").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodPut, "/posts/"+brokenID.String(), bearer(t, service, other.ID), "").Code)
}

func TestRoleChangesTakeEffectImmediately(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service, store := newTestService(t)
	alice := seedUser(t, store, "alice@example.com", "StrongPass1!", false)
	router := newUserRouter(service)
	header := bearer(t, service, alice.ID)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPatch, "/users/"+alice.ID.String()+"/admin", header, "").Code)

	store.setAdmin(alice.ID)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPatch, "/users/"+alice.ID.String()+"/admin", header, "").Code)
}
