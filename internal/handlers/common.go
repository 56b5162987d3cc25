package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"complexcare/internal/demo"
	"complexcare/internal/metrics"
	"complexcare/internal/middlewares"
	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

// actor returns the caller resolved by TenantScope, writing 401 when the
// route was registered without it.
func actor(c *gin.Context) (services.Actor, bool) {
	a, ok := middlewares.Actor(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
	}
	return a, ok
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param(name))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, nil, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses an optional query parameter.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := utils.ParseUUID(raw)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, nil, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return false
	}
	return true
}

// DemoMode decides whether a failed list read is answered with sample data.
type DemoMode bool

// serve writes sample data for resource when demo mode is on and err says
// the database is unreachable. It reports whether it wrote a response.
func (d DemoMode) serve(c *gin.Context, err error, resource string, sample func() any) bool {
	if !bool(d) || !errors.Is(err, services.ErrUnavailable) {
		return false
	}
	metrics.RecordDemoFallback(resource)
	c.Header(demo.Header, "true")
	responses.Success(c, http.StatusOK, sample(), "Showing demo data")
	return true
}
