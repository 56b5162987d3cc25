package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type DiagnosticsHandler struct {
	diagnosticsService *services.DiagnosticsService
}

func NewDiagnosticsHandler(diagnosticsService *services.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnosticsService: diagnosticsService}
}

// AnalyzeDatabase handles GET /api/v1/database-analysis
func (h *DiagnosticsHandler) AnalyzeDatabase(c *gin.Context) {
	analysis, err := h.diagnosticsService.Analyze(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to analyze database")
		return
	}
	responses.Success(c, http.StatusOK, analysis, "Database analysis completed")
}

// ValidateSchema handles GET /api/v1/database-analysis/schema/validate
func (h *DiagnosticsHandler) ValidateSchema(c *gin.Context) {
	report, err := h.diagnosticsService.Validate(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to validate schema")
		return
	}
	message := "Schema is valid"
	if !report.Valid {
		message = "Schema does not match the expected layout"
	}
	responses.Success(c, http.StatusOK, report, message)
}

// VisualizeSchema handles GET /api/v1/database-analysis/schema/diagram
func (h *DiagnosticsHandler) VisualizeSchema(c *gin.Context) {
	diagram, err := h.diagnosticsService.Diagram(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to generate schema diagram")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{
		"mermaid": diagram,
		"schema":  "public",
	}, "Schema diagram generated successfully")
}
