package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"complexcare/internal/models"
	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

// TenantHeader lets a superadmin act on a tenant's data.
const TenantHeader = "X-Tenant-ID"

type TenantGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// RequireRole lets the request through only when the token's role is one of
// roles. Must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !utils.Contains(roles, claims.Role) {
			abort(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

func RequireSuperadmin() gin.HandlerFunc {
	return RequireRole(models.RoleSuperadmin)
}

// TenantScope resolves the tenant a request acts on and stores the actor.
// Tenant users act on the tenant in their token, which must be active.
// Superadmins pick any existing tenant with the X-Tenant-ID header.
func TenantScope(tenants TenantGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid token subject")
			return
		}

		var tenantID uuid.UUID
		if claims.Role == models.RoleSuperadmin {
			header := c.GetHeader(TenantHeader)
			if header == "" {
				abort(c, http.StatusBadRequest, "X-Tenant-ID header is required for superadmin requests")
				return
			}
			if tenantID, err = uuid.Parse(header); err != nil {
				abort(c, http.StatusBadRequest, "Invalid X-Tenant-ID header")
				return
			}
		} else {
			var has bool
			if tenantID, has = claims.Tenant(); !has {
				abort(c, http.StatusForbidden, "User has no tenant")
				return
			}
		}

		tenant, err := tenants.GetByID(c.Request.Context(), tenantID)
		if err != nil {
			responses.Error(c, err, "Could not load tenant")
			c.Abort()
			return
		}
		if tenant == nil {
			abort(c, http.StatusNotFound, "Tenant not found")
			return
		}
		if !tenant.IsActive() && claims.Role != models.RoleSuperadmin {
			abort(c, http.StatusForbidden, "Tenant is suspended")
			return
		}

		SetActor(c, services.Actor{UserID: userID, TenantID: tenantID, Role: claims.Role})
		c.Next()
	}
}

func SetActor(c *gin.Context, a services.Actor) {
	c.Set(actorKey, a)
}

// Actor returns the caller stored by TenantScope.
func Actor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}
