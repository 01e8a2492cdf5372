package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/blogapi/internal/apierror"
)

type contextKey struct{}

const userGinKey = "blogUser"

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext extracts the user stored by WithUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextKey{}).(*User)
	return user, ok && user != nil
}

// CurrentUser extracts the authenticated user attached by OptionalUser or
// RequireUser.
func CurrentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get(userGinKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*User)
	return user, ok && user != nil
}

func attachUser(c *gin.Context, user *User) {
	c.Set(userGinKey, user)
	c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
}

// OptionalUser attaches the caller's identity when a valid access token is
// presented. Missing or invalid tokens continue anonymously.
func OptionalUser(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.ResolveUserFromBearerToken(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil && !errors.Is(err, ErrInvalidToken) {
			apierror.Internal(c, err)
			return
		}
		if user != nil {
			attachUser(c, user)
		}
		c.Next()
	}
}

// RequireUser rejects requests without a valid access token.
func RequireUser(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := service.ResolveUserFromBearerToken(c.Request.Context(), c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, ErrInvalidToken):
			apierror.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		case err != nil:
			apierror.Internal(c, err)
			return
		case user == nil:
			apierror.Abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		attachUser(c, user)
		c.Next()
	}
}
