package post

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/apierror"
	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/pagination"
)

// RegisterRoutes mounts post endpoints under /posts.
func RegisterRoutes(router *gin.RouterGroup, service *Service, authService *auth.Service) {
	handler := &httpHandler{service: service}

	posts := router.Group("/posts")
	{
		optional := auth.OptionalUser(authService)
		posts.GET("", optional, handler.list)
		posts.GET("/:id", optional, handler.get)

		required := auth.RequireUser(authService)
		ownerOrAdmin := auth.OwnerOrAdmin(service.Owner)
		posts.POST("", required, auth.RequireRole(auth.RoleAuthor), handler.create)
		posts.PUT("/:id", required, ownerOrAdmin, handler.update)
		posts.DELETE("/:id", required, ownerOrAdmin, handler.remove)
	}
}

type httpHandler struct {
	service *Service
}

type postRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Content     string `json:"content" binding:"required"`
	IsPublished bool   `json:"isPublished"`
}

type authorView struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type postView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsPublished bool       `json:"isPublished"`
	Author      authorView `json:"author"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type listResponse struct {
	Posts []postView      `json:"posts"`
	Meta  pagination.Meta `json:"meta"`
}

type postResponse struct {
	Post postView `json:"post"`
}

func (h *httpHandler) list(c *gin.Context) {
	page, err := pagination.FromQuery(c)
	if err != nil {
		apierror.BindError(c, err)
		return
	}

	viewer, _ := auth.CurrentUser(c)
	posts, total, err := h.service.List(c.Request.Context(), viewer, page)
	if err != nil {
		apierror.Internal(c, err)
		return
	}

	resp := listResponse{Posts: make([]postView, 0, len(posts)), Meta: page.Meta(total)}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, toView(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *httpHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	viewer, _ := auth.CurrentUser(c)
	p, err := h.service.Get(c.Request.Context(), viewer, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, postResponse{Post: toView(p)})
}

func (h *httpHandler) create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		apierror.Respond(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), user.ID, Input(req))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, postResponse{Post: toView(p)})
}

func (h *httpHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BindError(c, err)
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, Input(req))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, postResponse{Post: toView(p)})
}

func (h *httpHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func fail(c *gin.Context, err error) {
	var inputErr *InputError
	switch {
	case errors.Is(err, ErrPostNotFound):
		apierror.Respond(c, http.StatusNotFound, "post not found")
	case errors.As(err, &inputErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.Body{Errors: []apierror.Item{{Msg: inputErr.Msg, Param: inputErr.Field}}})
	default:
		apierror.Internal(c, err)
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierror.Respond(c, http.StatusNotFound, "post not found")
		return uuid.Nil, false
	}
	return id, true
}

func toView(p Post) postView {
	return postView{
		ID:          p.ID.String(),
		Title:       p.Title,
		Content:     p.Content,
		IsPublished: p.IsPublished,
		Author:      authorView{ID: p.AuthorID.String(), FullName: p.AuthorName},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
