package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/apierror"
	"github.com/inkwell/blogapi/internal/auth"
	"github.com/inkwell/blogapi/internal/pagination"
)

// RegisterRoutes mounts user endpoints under /users.
func RegisterRoutes(router *gin.RouterGroup, service *Service, authService *auth.Service) {
	handler := &httpHandler{service: service}

	users := router.Group("/users")
	users.GET("", handler.list)
	users.GET("/:id", handler.get)

	protected := users.Group("", auth.RequireUser(authService))
	{
		selfOrAdmin := auth.SelfOrAdmin(authService.UserExists)
		protected.PATCH("/:id", selfOrAdmin, handler.update)
		protected.DELETE("/:id", selfOrAdmin, handler.remove)

		adminOnly := auth.RequireRole(auth.RoleAdmin)
		protected.PATCH("/:id/author", adminOnly, handler.toggleAuthor)
		protected.PATCH("/:id/admin", adminOnly, handler.toggleAdmin)
	}
}

type httpHandler struct {
	service *Service
}

type updateRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"firstName" binding:"omitempty,min=2,max=64"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2,max=64"`
}

type listResponse struct {
	Users []auth.Profile  `json:"users"`
	Meta  pagination.Meta `json:"meta"`
}

type userResponse struct {
	User auth.Profile `json:"user"`
}

func (h *httpHandler) list(c *gin.Context) {
	page, err := pagination.FromQuery(c)
	if err != nil {
		apierror.BindError(c, err)
		return
	}

	users, total, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		apierror.Internal(c, err)
		return
	}

	resp := listResponse{Users: make([]auth.Profile, 0, len(users)), Meta: page.Meta(total)}
	for _, u := range users {
		resp.Users = append(resp.Users, toProfile(u))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *httpHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: toProfile(u)})
}

func (h *httpHandler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BindError(c, err)
		return
	}

	u, err := h.service.Update(c.Request.Context(), id, UpdateInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: toProfile(u)})
}

func (h *httpHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) toggleAuthor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := h.service.ToggleAuthor(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: toProfile(u)})
}

func (h *httpHandler) toggleAdmin(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	u, err := h.service.ToggleAdmin(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse{User: toProfile(u)})
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, apierror.Body{Errors: []apierror.Item{{Msg: inputErr.Msg, Param: inputErr.Field}}})
	case errors.Is(err, ErrUserNotFound):
		apierror.Respond(c, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusConflict, apierror.Body{Errors: []apierror.Item{{Msg: "email already registered", Param: "email"}}})
	default:
		apierror.Internal(c, err)
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierror.Respond(c, http.StatusNotFound, "user not found")
		return uuid.Nil, false
	}
	return id, true
}

func toProfile(u User) auth.Profile {
	return auth.Profile{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		IsAuthor:  u.IsAuthor,
		IsAdmin:   u.IsAdmin,
	}
}
