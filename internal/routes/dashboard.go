package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type DashboardRoutes struct {
	handler *handlers.DashboardHandler
}

func NewDashboardRoutes(handler *handlers.DashboardHandler) *DashboardRoutes {
	return &DashboardRoutes{handler: handler}
}

func (r *DashboardRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	router.GET("/dashboard", append(g.Tenant(), r.handler.GetDashboard)...)

	notifications := router.Group("/notifications", g.Tenant()...)
	{
		notifications.GET("", r.handler.ListNotifications)
		notifications.POST("/:notification_id/read", r.handler.MarkNotificationRead)
	}
}
