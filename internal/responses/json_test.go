package responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexcare/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get patient: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: bad date", services.ErrInvalidInput), http.StatusBadRequest},
		{services.ErrConflict, http.StatusConflict},
		{fmt.Errorf("list: %w: %w", services.ErrUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: password authentication failed"), "Failed to list patients")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Failed to list patients", body.Message)
	assert.Empty(t, body.Error)
	assert.Len(t, c.Errors, 1)
}
