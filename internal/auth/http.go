package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blogapi/internal/apierror"
)

// RegisterRoutes mounts authentication endpoints under /auth.
func RegisterRoutes(router *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handler.register)
		authGroup.POST("/login", handler.login)
		authGroup.POST("/refresh", handler.refresh)
		authGroup.POST("/logout", RequireUser(service), handler.logout)
	}
}

type httpHandler struct {
	service *Service
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"required,min=2,max=64"`
	LastName  string `json:"lastName" binding:"required,min=2,max=64"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
}

// Profile is the public view of a user.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	IsAuthor  bool   `json:"isAuthor"`
	IsAdmin   bool   `json:"isAdmin"`
}

// NewProfile builds the public view of user.
func NewProfile(user User) Profile {
	return Profile{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
		IsAuthor:  user.IsAuthor,
		IsAdmin:   user.IsAdmin,
	}
}

type authResponse struct {
	Token        string  `json:"token"`
	RefreshToken string  `json:"refreshToken"`
	User         Profile `json:"user"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

func (h *httpHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BindError(c, err)
		return
	}

	result, err := h.service.Register(c.Request.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			c.JSON(http.StatusConflict, apierror.Body{Errors: []apierror.Item{{Msg: "email already registered", Param: "email"}}})
		case errors.Is(err, ErrInvalidCredentials):
			apierror.Respond(c, http.StatusBadRequest, "invalid registration data")
		default:
			apierror.Internal(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, marshalAuthResponse(result))
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.BindError(c, err)
		return
	}

	result, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			apierror.Respond(c, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, ErrTooManyAttempts):
			apierror.Respond(c, http.StatusTooManyRequests, "too many login attempts")
		default:
			apierror.Internal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, marshalAuthResponse(result))
}

func (h *httpHandler) refresh(c *gin.Context) {
	token, _, err := h.service.RefreshAccessToken(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			apierror.Respond(c, http.StatusUnauthorized, "invalid token")
			return
		}
		apierror.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, refreshResponse{Token: token})
}

func (h *httpHandler) logout(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		apierror.Respond(c, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.service.RevokeSession(c.Request.Context(), user.ID); err != nil {
		apierror.Internal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func marshalAuthResponse(result AuthResult) authResponse {
	return authResponse{
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		User:         NewProfile(result.User),
	}
}
