package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inkwell/blogapi/internal/apierror"
)

// OwnerLookup resolves the owner of the resource with the given id.
type OwnerLookup func(ctx context.Context, id uuid.UUID) (owner uuid.UUID, found bool, err error)

// ExistsLookup reports whether the user with the given id exists.
type ExistsLookup func(ctx context.Context, id uuid.UUID) (bool, error)

// RequireRole lets the request through only when the caller holds role.
func RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierror.Abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !user.Roles().Has(role) {
			apierror.Abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

// OwnerOrAdmin allows admins, and otherwise only the owner of the resource
// named by the :id path parameter.
func OwnerOrAdmin(lookup OwnerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			apierror.Abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if user.Roles().Has(RoleAdmin) {
			c.Next()
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierror.Abort(c, http.StatusNotFound, "not found")
			return
		}

		owner, found, err := lookup(c.Request.Context(), id)
		if err != nil {
			apierror.Internal(c, err)
			return
		}
		if !found {
			apierror.Abort(c, http.StatusNotFound, "not found")
			return
		}
		if owner != user.ID {
			apierror.Abort(c, http.StatusForbidden, "forbidden")
			return
		}

		c.Next()
	}
}

// SelfOrAdmin allows admins, and otherwise only the user named by :id.
func SelfOrAdmin(exists ExistsLookup) gin.HandlerFunc {
	return OwnerOrAdmin(func(ctx context.Context, id uuid.UUID) (uuid.UUID, bool, error) {
		found, err := exists(ctx, id)
		return id, found, err
	})
}
