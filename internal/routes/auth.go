package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type AuthRoutes struct {
	handler *handlers.AuthHandler
	google  *handlers.GoogleAuthHandler
}

func NewAuthRoutes(handler *handlers.AuthHandler, google *handlers.GoogleAuthHandler) *AuthRoutes {
	return &AuthRoutes{handler: handler, google: google}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	auth := router.Group("/auth")
	{
		// Public routes
		public := auth.Group("", g.RateLimit)
		public.POST("/login", r.handler.Login)
		public.POST("/refresh", r.handler.Refresh)
		if r.google != nil {
			public.GET("/google/login", r.google.Login)
			public.GET("/google/callback", r.google.Callback)
		}

		// Protected routes
		protected := auth.Group("", g.Authenticate, g.RateLimit)
		protected.POST("/logout", r.handler.Logout)
		protected.GET("/me", r.handler.Me)
	}
}
