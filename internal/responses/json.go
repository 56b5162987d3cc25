package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/services"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status StatusFor picks. Internal errors are not
// echoed to the client; they are attached to the gin context for the
// request logger.
func Error(c *gin.Context, err error, message string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		Fail(c, status, nil, message)
		return
	}
	Fail(c, status, err, message)
}
