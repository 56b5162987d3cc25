package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type AppointmentRoutes struct {
	handler *handlers.AppointmentHandler
}

func NewAppointmentRoutes(handler *handlers.AppointmentHandler) *AppointmentRoutes {
	return &AppointmentRoutes{handler: handler}
}

func (r *AppointmentRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	appts := router.Group("/appointments", g.Tenant()...)
	{
		appts.POST("", r.handler.CreateAppointment)
		appts.GET("", r.handler.ListAppointments)
		appts.GET("/:appointment_id", r.handler.GetAppointment)
		appts.PATCH("/:appointment_id/status", r.handler.UpdateStatus)
		appts.POST("/:appointment_id/cancel", r.handler.CancelAppointment)
	}
}
