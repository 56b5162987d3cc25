package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard handles GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	summary, err := h.dashboardService.Summary(c.Request.Context(), a)
	if err != nil {
		responses.Error(c, err, "Failed to load dashboard")
		return
	}
	responses.Success(c, http.StatusOK, summary, "Dashboard loaded")
}

// ListNotifications handles GET /api/v1/notifications?unread=true&limit=
func (h *DashboardHandler) ListNotifications(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	limit := utils.Clamp(c.Query("limit"), 50, 1, 200)
	list, err := h.dashboardService.Notifications(c.Request.Context(), a, c.Query("unread") == "true", limit)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve notifications")
		return
	}
	responses.Success(c, http.StatusOK, list, "Notifications retrieved successfully")
}

// MarkNotificationRead handles POST /api/v1/notifications/:notification_id/read
func (h *DashboardHandler) MarkNotificationRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "notification_id")
	if !ok {
		return
	}
	if err := h.dashboardService.MarkNotificationRead(c.Request.Context(), a, id); err != nil {
		responses.Error(c, err, "Failed to update notification")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Notification marked as read")
}
