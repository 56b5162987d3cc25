package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type DiagnosticsRoutes struct {
	handler *handlers.DiagnosticsHandler
}

func NewDiagnosticsRoutes(handler *handlers.DiagnosticsHandler) *DiagnosticsRoutes {
	return &DiagnosticsRoutes{handler: handler}
}

func (r *DiagnosticsRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	analysis := router.Group("/database-analysis", g.Superadmin()...)
	{
		analysis.GET("", r.handler.AnalyzeDatabase)
		analysis.GET("/schema/validate", r.handler.ValidateSchema)
		analysis.GET("/schema/diagram", r.handler.VisualizeSchema)
	}
}
