package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/auth/authtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router *gin.Engine
	auth   *auth.Service
	creds  *authtest.Store
	users  *memoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService, creds := authtest.NewService(t)
	users := newMemoryStore()

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewService(users), authService)

	return &fixture{router: router, auth: authService, creds: creds, users: users}
}

// seed stores the same account in the credential store and the profile store.
func (f *fixture) seed(email string, roles auth.Role) User {
	creds := f.creds.Seed(email, roles)
	return f.users.put(User{
		ID:        creds.ID,
		Email:     creds.Email,
		FirstName: creds.FirstName,
		LastName:  creds.LastName,
		IsAuthor:  creds.IsAuthor,
		IsAdmin:   creds.IsAdmin,
	})
}

func (f *fixture) do(method, path, authorization, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestListAndGetArePublic(t *testing.T) {
	f := newFixture(t)
	ada := f.seed("ada@example.com", auth.RoleAuthor)
	f.seed("bob@example.com", 0)

	rr := f.do(http.MethodGet, "/v1/users?limit=1", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var list listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Len(t, list.Users, 1)
	assert.Equal(t, 2, list.Meta.Total)

	rr = f.do(http.MethodGet, "/v1/users/"+ada.ID.String(), "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var one userResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, ada.Email, one.User.Email)
	assert.Equal(t, "Test User", one.User.FullName)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/users/"+uuid.NewString(), "", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/users/nope", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/v1/users?page=0", "", "").Code)
}

func TestPatchOtherUserIsForbidden(t *testing.T) {
	f := newFixture(t)
	alice := f.seed("alice@example.com", auth.RoleAuthor)
	bob := f.seed("bob@example.com", auth.RoleAuthor)

	for _, body := range []string{`{"firstName":"Robert"}`, `{"email":"not-an-email"}`, `{broken`} {
		rr := f.do(http.MethodPatch, "/v1/users/"+bob.ID.String(), authtest.Bearer(t, f.auth, alice.ID), body)
		assert.Equal(t, http.StatusForbidden, rr.Code, body)
	}

	stored, _ := f.users.FindByID(context.Background(), bob.ID)
	assert.Equal(t, "Test", stored.FirstName)
}

func TestAdminPatchesAnyUser(t *testing.T) {
	f := newFixture(t)
	admin := f.seed("admin@example.com", auth.RoleAdmin)
	bob := f.seed("bob@example.com", auth.RoleAuthor)

	rr := f.do(http.MethodPatch, "/v1/users/"+bob.ID.String(), authtest.Bearer(t, f.auth, admin.ID), `{"firstName":"Robert"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Robert", resp.User.FirstName)
}

func TestSelfUpdateValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.seed("alice@example.com", auth.RoleAuthor)
	header := authtest.Bearer(t, f.auth, alice.ID)

	rr := f.do(http.MethodPatch, "/v1/users/"+alice.ID.String(), header, `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"param":"email"`)

	rr = f.do(http.MethodPatch, "/v1/users/"+alice.ID.String(), header, `{"firstName":" a "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"param":"firstName"`)

	f.seed("taken@example.com", 0)
	rr = f.do(http.MethodPatch, "/v1/users/"+alice.ID.String(), header, `{"email":"taken@example.com"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	alice := f.seed("alice@example.com", auth.RoleAuthor)
	bob := f.seed("bob@example.com", auth.RoleAuthor)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/v1/users/"+alice.ID.String(), "", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/v1/users/"+bob.ID.String(), authtest.Bearer(t, f.auth, alice.ID), "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/v1/users/"+alice.ID.String(), authtest.Bearer(t, f.auth, alice.ID), "").Code)

	_, err := f.users.FindByID(context.Background(), alice.ID)
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestRoleTogglesRequireAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.seed("admin@example.com", auth.RoleAdmin)
	alice := f.seed("alice@example.com", auth.RoleAuthor)

	rr := f.do(http.MethodPatch, "/v1/users/"+alice.ID.String()+"/admin", authtest.Bearer(t, f.auth, alice.ID), "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPatch, "/v1/users/"+alice.ID.String()+"/author", authtest.Bearer(t, f.auth, admin.ID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.User.IsAuthor)

	rr = f.do(http.MethodPatch, "/v1/users/"+uuid.NewString()+"/admin", authtest.Bearer(t, f.auth, admin.ID), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
