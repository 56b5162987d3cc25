package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/utils"
)

const (
	claimsKey = "claims"
	actorKey  = "actor"
)

// TokenVerifier is satisfied by services.AuthService.
type TokenVerifier interface {
	VerifyAccess(token string) (*utils.Claims, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Authenticate requires a valid, unrevoked Bearer access token and stores
// its claims in the context.
func Authenticate(auth TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, http.StatusUnauthorized, "Invalid Authorization format")
			return
		}

		claims, err := auth.VerifyAccess(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		revoked, err := auth.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			responses.Error(c, err, "Could not verify token")
			c.Abort()
			return
		}
		if revoked {
			abort(c, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Claims returns the claims stored by Authenticate.
func Claims(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

func abort(c *gin.Context, status int, message string) {
	responses.Fail(c, status, nil, message)
	c.Abort()
}
