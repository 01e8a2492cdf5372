package comment

import (
	"context"
	"encoding/json"
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
	router   *gin.Engine
	auth     *auth.Service
	creds    *authtest.Store
	comments *memoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService, creds := authtest.NewService(t)
	comments := newMemoryStore()

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewService(comments), authService)

	return &fixture{router: router, auth: authService, creds: creds, comments: comments}
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

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	reader := f.creds.Seed("reader@example.com", 0)
	postID := f.comments.publish()
	path := "/v1/posts/" + postID.String() + "/comments"

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, path, "", `{"content":"hi"}`).Code)

	rr := f.do(http.MethodPost, path, authtest.Bearer(t, f.auth, reader.ID), `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created commentResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, reader.ID.String(), created.Comment.Author.ID)

	rr = f.do(http.MethodGet, path, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Comments, 1)
	assert.Equal(t, "hi", list.Comments[0].Content)
}

func TestCommentValidation(t *testing.T) {
	f := newFixture(t)
	reader := f.creds.Seed("reader@example.com", 0)
	path := "/v1/posts/" + f.comments.publish().String() + "/comments"
	header := authtest.Bearer(t, f.auth, reader.ID)

	rr := f.do(http.MethodPost, path, header, `{"content":"`+strings.Repeat("x", 281)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"param":"content"`)

	rr = f.do(http.MethodPost, path, header, `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCommentsOnHiddenPosts(t *testing.T) {
	f := newFixture(t)
	reader := f.creds.Seed("reader@example.com", 0)
	draft := f.comments.draft()

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/posts/"+draft.String()+"/comments", "", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/v1/posts/"+uuid.NewString()+"/comments", authtest.Bearer(t, f.auth, reader.ID), `{"content":"hi"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/posts/not-a-uuid/comments", "", "").Code)
}

func TestDeleteCommentOwnership(t *testing.T) {
	f := newFixture(t)
	author := f.creds.Seed("author@example.com", 0)
	other := f.creds.Seed("other@example.com", auth.RoleAuthor)
	admin := f.creds.Seed("admin@example.com", auth.RoleAdmin)
	postID := f.comments.publish()

	mine, err := f.comments.Create(context.Background(), postID, author.ID, "mine")
	require.NoError(t, err)
	theirs, err := f.comments.Create(context.Background(), postID, author.ID, "also mine")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/v1/comments/"+mine.ID.String(), "", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/v1/comments/"+mine.ID.String(), authtest.Bearer(t, f.auth, other.ID), "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/v1/comments/"+uuid.NewString(), authtest.Bearer(t, f.auth, other.ID), "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/v1/comments/"+mine.ID.String(), authtest.Bearer(t, f.auth, author.ID), "").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/v1/comments/"+theirs.ID.String(), authtest.Bearer(t, f.auth, admin.ID), "").Code)
}
