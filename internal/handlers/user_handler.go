package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles POST /api/v1/users (admin only)
func (h *UserHandler) CreateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), a, req)
	if err != nil {
		responses.Error(c, err, "Failed to create user")
		return
	}
	responses.Success(c, http.StatusCreated, user, "User created successfully")
}

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	users, err := h.userService.ListUsers(c.Request.Context(), a)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve users")
		return
	}
	responses.Success(c, http.StatusOK, users, "Users retrieved successfully")
}

// GetUser handles GET /api/v1/users/:user_id
func (h *UserHandler) GetUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve user")
		return
	}
	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}
