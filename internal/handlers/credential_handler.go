package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

type CredentialHandler struct {
	credentialService *services.CredentialService
}

func NewCredentialHandler(credentialService *services.CredentialService) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

// CreateCredential handles POST /api/v1/care-professionals/:professional_id/credentials
func (h *CredentialHandler) CreateCredential(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	professionalID, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	var in services.CredentialInput
	if !bindJSON(c, &in) {
		return
	}
	cred, err := h.credentialService.Create(c.Request.Context(), a, professionalID, in)
	if err != nil {
		responses.Error(c, err, "Failed to create credential")
		return
	}
	responses.Success(c, http.StatusCreated, cred, "Credential created successfully")
}

// ListCredentials handles GET /api/v1/care-professionals/:professional_id/credentials
func (h *CredentialHandler) ListCredentials(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	professionalID, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	creds, err := h.credentialService.ListByProfessional(c.Request.Context(), a, professionalID)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve credentials")
		return
	}
	responses.Success(c, http.StatusOK, creds, "Credentials retrieved successfully")
}

// ListExpiring handles GET /api/v1/credentials/expiring?days=30
func (h *CredentialHandler) ListExpiring(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	days := utils.Clamp(c.Query("days"), services.DefaultExpiryWindowDays, 1, services.MaxExpiryWindowDays)
	creds, err := h.credentialService.ListExpiring(c.Request.Context(), a, days)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve expiring credentials")
		return
	}
	responses.Success(c, http.StatusOK, creds, "Expiring credentials retrieved successfully")
}

// GetCredential handles GET /api/v1/credentials/:credential_id
func (h *CredentialHandler) GetCredential(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "credential_id")
	if !ok {
		return
	}
	cred, err := h.credentialService.Get(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve credential")
		return
	}
	responses.Success(c, http.StatusOK, cred, "Credential retrieved successfully")
}

// UpdateCredential handles PUT /api/v1/credentials/:credential_id
func (h *CredentialHandler) UpdateCredential(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "credential_id")
	if !ok {
		return
	}
	var in services.CredentialInput
	if !bindJSON(c, &in) {
		return
	}
	cred, err := h.credentialService.Update(c.Request.Context(), a, id, in)
	if err != nil {
		responses.Error(c, err, "Failed to update credential")
		return
	}
	responses.Success(c, http.StatusOK, cred, "Credential updated successfully")
}

// DeleteCredential handles DELETE /api/v1/credentials/:credential_id
func (h *CredentialHandler) DeleteCredential(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "credential_id")
	if !ok {
		return
	}
	if err := h.credentialService.Delete(c.Request.Context(), a, id); err != nil {
		responses.Error(c, err, "Failed to delete credential")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Credential deleted successfully")
}

// CredentialHistory handles GET /api/v1/credentials/:credential_id/history
func (h *CredentialHandler) CredentialHistory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "credential_id")
	if !ok {
		return
	}
	history, err := h.credentialService.History(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve credential history")
		return
	}
	responses.Success(c, http.StatusOK, history, "Credential history retrieved successfully")
}
