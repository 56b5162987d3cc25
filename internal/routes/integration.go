package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type IntegrationRoutes struct {
	handler *handlers.IntegrationHandler
}

func NewIntegrationRoutes(handler *handlers.IntegrationHandler) *IntegrationRoutes {
	return &IntegrationRoutes{handler: handler}
}

func (r *IntegrationRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	dmd := router.Group("/dmd", g.Tenant()...)
	{
		dmd.GET("/search", r.handler.SearchDMD)
		dmd.GET("/products/:code", r.handler.GetDMDProduct)
	}

	router.GET("/gp-practices/:code", append(g.Tenant(), r.handler.GetGPPractice)...)
	router.POST("/onboarding/suggestions", append(g.Tenant(), r.handler.OnboardingSuggestions)...)
}
