package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type TenantRoutes struct {
	handler *handlers.TenantHandler
}

func NewTenantRoutes(handler *handlers.TenantHandler) *TenantRoutes {
	return &TenantRoutes{handler: handler}
}

func (r *TenantRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	tenants := router.Group("/tenants", g.Superadmin()...)
	{
		tenants.POST("", r.handler.CreateTenant)
		tenants.GET("", r.handler.ListTenants)
		tenants.GET("/:tenant_id", r.handler.GetTenant)
		tenants.PATCH("/:tenant_id", r.handler.UpdateTenant)
		tenants.POST("/:tenant_id/suspend", r.handler.SuspendTenant)
		tenants.POST("/:tenant_id/activate", r.handler.ActivateTenant)
		tenants.GET("/:tenant_id/stats", r.handler.TenantStats)
	}
}
