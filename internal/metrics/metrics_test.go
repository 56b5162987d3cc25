package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/v1/patients/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler()))

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/v1/patients/:id", "204"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/v1/patients/:id", "204"))
	assert.Equal(t, before+2, after)

	RecordDMDLookup("search", "live")
	RecordRemindersSent(3)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `complexcare_http_requests_total{method="GET",route="/api/v1/patients/:id",status="204"}`))
	assert.Contains(t, body, `complexcare_dmd_lookups_total{kind="search",source="live"}`)
	assert.Contains(t, body, "complexcare_credentials_reminders_sent_total")
}
