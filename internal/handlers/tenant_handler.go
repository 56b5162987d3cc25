package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/models"
	"complexcare/internal/responses"
	"complexcare/internal/services"
)

// TenantHandler serves the superadmin tenant endpoints.
type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// CreateTenant handles POST /api/v1/tenants
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req services.TenantRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to create tenant")
		return
	}
	responses.Success(c, http.StatusCreated, tenant, "Tenant created successfully")
}

// ListTenants handles GET /api/v1/tenants
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.tenantService.List(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to retrieve tenants")
		return
	}
	responses.Success(c, http.StatusOK, tenants, "Tenants retrieved successfully")
}

// GetTenant handles GET /api/v1/tenants/:tenant_id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, ok := paramUUID(c, "tenant_id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve tenant")
		return
	}
	responses.Success(c, http.StatusOK, tenant, "Tenant retrieved successfully")
}

// UpdateTenant handles PATCH /api/v1/tenants/:tenant_id
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	id, ok := paramUUID(c, "tenant_id")
	if !ok {
		return
	}
	var req services.TenantRequest
	if !bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenantService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update tenant")
		return
	}
	responses.Success(c, http.StatusOK, tenant, "Tenant updated successfully")
}

// SuspendTenant handles POST /api/v1/tenants/:tenant_id/suspend
func (h *TenantHandler) SuspendTenant(c *gin.Context) {
	h.setStatus(c, models.TenantStatusSuspended, "Tenant suspended")
}

// ActivateTenant handles POST /api/v1/tenants/:tenant_id/activate
func (h *TenantHandler) ActivateTenant(c *gin.Context) {
	h.setStatus(c, models.TenantStatusActive, "Tenant activated")
}

func (h *TenantHandler) setStatus(c *gin.Context, status, message string) {
	id, ok := paramUUID(c, "tenant_id")
	if !ok {
		return
	}
	tenant, err := h.tenantService.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		responses.Error(c, err, "Failed to update tenant status")
		return
	}
	responses.Success(c, http.StatusOK, tenant, message)
}

// TenantStats handles GET /api/v1/tenants/:tenant_id/stats
func (h *TenantHandler) TenantStats(c *gin.Context) {
	id, ok := paramUUID(c, "tenant_id")
	if !ok {
		return
	}
	stats, err := h.tenantService.Stats(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve tenant stats")
		return
	}
	responses.Success(c, http.StatusOK, stats, "Tenant stats retrieved successfully")
}
