package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexcare/internal/handlers"
)

func newTestRouter(google bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := Handlers{}
	if google {
		h.GoogleAuth = &handlers.GoogleAuthHandler{}
	}
	g := Guards{
		Authenticate: func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) },
		RateLimit:    func(c *gin.Context) { c.Next() },
		TenantScope:  func(c *gin.Context) { c.Next() },
	}
	r := gin.New()
	RegisterRoutes(r, h, g)
	return r
}

func TestRegisterRoutes(t *testing.T) {
	r := newTestRouter(false)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"GET /api/v1/tenants/:tenant_id/stats",
		"GET /api/v1/patients",
		"GET /api/v1/care-professionals/:professional_id/patients",
		"PUT /api/v1/care-professionals/:professional_id/patients/:patient_id",
		"GET /api/v1/credentials/expiring",
		"GET /api/v1/appointments",
		"POST /api/v1/payroll/export/:provider",
		"GET /api/v1/invoices/export",
		"GET /api/v1/dmd/search",
		"GET /api/v1/gp-practices/:code",
		"POST /api/v1/onboarding/suggestions",
		"GET /api/v1/database-analysis",
		"GET /api/v1/database-analysis/schema/diagram",
		"GET /api/v1/dashboard",
		"GET /metrics",
		"GET /health",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.False(t, registered["GET /api/v1/auth/google/login"])
	assert.False(t, registered["GET /api/v1/payroll/export/:provider"], "exporting changes state")

	assert.True(t, func() bool {
		for _, route := range newTestRouter(true).Routes() {
			if route.Path == "/api/v1/auth/google/callback" {
				return true
			}
		}
		return false
	}())
}

func TestGuardedRoutesRequireAuthentication(t *testing.T) {
	r := newTestRouter(false)

	for _, path := range []string{
		"/api/v1/patients",
		"/api/v1/tenants",
		"/api/v1/database-analysis",
		"/api/v1/payroll/providers",
		"/api/v1/dashboard",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
