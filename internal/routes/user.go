package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
	"complexcare/internal/middlewares"
	"complexcare/internal/models"
)

type UserRoutes struct {
	userHandler *handlers.UserHandler
}

func NewUserRoutes(userHandler *handlers.UserHandler) *UserRoutes {
	return &UserRoutes{userHandler: userHandler}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	users := router.Group("/users", g.Tenant()...)
	users.Use(middlewares.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
	{
		users.POST("", r.userHandler.CreateUser)
		users.GET("", r.userHandler.ListUsers)
		users.GET("/:user_id", r.userHandler.GetUser)
	}
}
