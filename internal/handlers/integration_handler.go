package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
)

// IntegrationHandler serves lookups backed by external providers: the dm+d
// browser, the GP data API and onboarding suggestions.
type IntegrationHandler struct {
	dmdService        *services.DMDService
	gpDataService     *services.GPDataService
	onboardingService *services.OnboardingService
}

func NewIntegrationHandler(dmd *services.DMDService, gp *services.GPDataService, onboarding *services.OnboardingService) *IntegrationHandler {
	return &IntegrationHandler{dmdService: dmd, gpDataService: gp, onboardingService: onboarding}
}

// SearchDMD handles GET /api/v1/dmd/search?q=
func (h *IntegrationHandler) SearchDMD(c *gin.Context) {
	result, err := h.dmdService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		responses.Error(c, err, "Failed to search dm+d")
		return
	}
	responses.Success(c, http.StatusOK, result, "dm+d search completed")
}

// GetDMDProduct handles GET /api/v1/dmd/products/:code
func (h *IntegrationHandler) GetDMDProduct(c *gin.Context) {
	detail, err := h.dmdService.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve dm+d product")
		return
	}
	responses.Success(c, http.StatusOK, detail, "dm+d product retrieved successfully")
}

// GetGPPractice handles GET /api/v1/gp-practices/:code
func (h *IntegrationHandler) GetGPPractice(c *gin.Context) {
	practice, err := h.gpDataService.Practice(c.Request.Context(), c.Param("code"))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve GP practice")
		return
	}
	responses.Success(c, http.StatusOK, practice, "GP practice retrieved successfully")
}

// OnboardingSuggestions handles POST /api/v1/onboarding/suggestions
func (h *IntegrationHandler) OnboardingSuggestions(c *gin.Context) {
	var req services.OnboardingRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.onboardingService.Suggest(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to generate suggestions")
		return
	}
	responses.Success(c, http.StatusOK, out, "Suggestions generated")
}
