package comment

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

// RegisterRoutes mounts /posts/:id/comments and /comments/:id.
func RegisterRoutes(router *gin.RouterGroup, service *Service, authService *auth.Service) {
	handler := &httpHandler{service: service}
	required := auth.RequireUser(authService)

	router.GET("/posts/:id/comments", handler.list)
	router.POST("/posts/:id/comments", required, handler.create)
	router.DELETE("/comments/:id", required, auth.OwnerOrAdmin(service.Owner), handler.remove)
}

type httpHandler struct {
	service *Service
}

type createRequest struct {
	Content string `json:"content" binding:"required,max=280"`
}

type commentView struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	Author    author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type author struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type listResponse struct {
	Comments []commentView   `json:"comments"`
	Meta     pagination.Meta `json:"meta"`
}

type commentResponse struct {
	Comment commentView `json:"comment"`
}

func (h *httpHandler) list(c *gin.Context) {
	postID, ok := pathID(c, "post not found")
	if !ok {
		return
	}
	page, err := pagination.FromQuery(c)
	if err != nil {
		apierror.BindError(c, err)
		return
	}

	comments, total, err := h.service.List(c.Request.Context(), postID, page)
	if err != nil {
		fail(c, err)
		return
	}

	resp := listResponse{Comments: make([]commentView, 0, len(comments)), Meta: page.Meta(total)}
	for _, cm := range comments {
		resp.Comments = append(resp.Comments, toView(cm))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *httpHandler) create(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		apierror.Respond(c, http.StatusUnauthorized, "authentication required")
		return
	}
	postID, ok := pathID(c, "post not found")
	if !ok {
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BindError(c, err)
		return
	}

	cm, err := h.service.Create(c.Request.Context(), postID, user.ID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, commentResponse{Comment: toView(cm)})
}

func (h *httpHandler) remove(c *gin.Context) {
	id, ok := pathID(c, "comment not found")
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
	switch {
	case errors.Is(err, ErrPostNotFound):
		apierror.Respond(c, http.StatusNotFound, "post not found")
	case errors.Is(err, ErrCommentNotFound):
		apierror.Respond(c, http.StatusNotFound, "comment not found")
	case errors.Is(err, ErrInvalidContent):
		c.JSON(http.StatusBadRequest, apierror.Body{Errors: []apierror.Item{{Msg: err.Error(), Param: "content"}}})
	default:
		apierror.Internal(c, err)
	}
}

func pathID(c *gin.Context, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierror.Respond(c, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func toView(cm Comment) commentView {
	return commentView{
		ID:        cm.ID.String(),
		PostID:    cm.PostID.String(),
		Content:   cm.Content,
		Author:    author{ID: cm.AuthorID.String(), FullName: cm.AuthorName},
		CreatedAt: cm.CreatedAt,
	}
}
