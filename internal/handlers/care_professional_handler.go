package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/demo"
	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type CareProfessionalHandler struct {
	professionalService *services.CareProfessionalService
	demo                DemoMode
}

func NewCareProfessionalHandler(professionalService *services.CareProfessionalService, demoMode DemoMode) *CareProfessionalHandler {
	return &CareProfessionalHandler{professionalService: professionalService, demo: demoMode}
}

// CreateCareProfessional handles POST /api/v1/care-professionals
func (h *CareProfessionalHandler) CreateCareProfessional(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in services.CareProfessionalInput
	if !bindJSON(c, &in) {
		return
	}
	cp, err := h.professionalService.Create(c.Request.Context(), a, in)
	if err != nil {
		responses.Error(c, err, "Failed to create care professional")
		return
	}
	responses.Success(c, http.StatusCreated, cp, "Care professional created successfully")
}

// ListCareProfessionals handles GET /api/v1/care-professionals?active=true
func (h *CareProfessionalHandler) ListCareProfessionals(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	activeOnly := c.Query("active") == "true"
	list, err := h.professionalService.List(c.Request.Context(), a, activeOnly)
	if err != nil {
		if h.demo.serve(c, err, "care_professionals", func() any { return demo.CareProfessionals(a.TenantID, activeOnly) }) {
			return
		}
		responses.Error(c, err, "Failed to retrieve care professionals")
		return
	}
	responses.Success(c, http.StatusOK, list, "Care professionals retrieved successfully")
}

// GetCareProfessional handles GET /api/v1/care-professionals/:professional_id
func (h *CareProfessionalHandler) GetCareProfessional(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	cp, err := h.professionalService.Get(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve care professional")
		return
	}
	responses.Success(c, http.StatusOK, cp, "Care professional retrieved successfully")
}

// UpdateCareProfessional handles PATCH /api/v1/care-professionals/:professional_id
func (h *CareProfessionalHandler) UpdateCareProfessional(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	var in services.CareProfessionalInput
	if !bindJSON(c, &in) {
		return
	}
	cp, err := h.professionalService.Update(c.Request.Context(), a, id, in)
	if err != nil {
		responses.Error(c, err, "Failed to update care professional")
		return
	}
	responses.Success(c, http.StatusOK, cp, "Care professional updated successfully")
}

// DeleteCareProfessional handles DELETE /api/v1/care-professionals/:professional_id
func (h *CareProfessionalHandler) DeleteCareProfessional(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	if err := h.professionalService.Delete(c.Request.Context(), a, id); err != nil {
		responses.Error(c, err, "Failed to delete care professional")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Care professional deleted successfully")
}

// ListPatients handles GET /api/v1/care-professionals/:professional_id/patients
func (h *CareProfessionalHandler) ListPatients(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	patients, err := h.professionalService.Patients(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve assigned patients")
		return
	}
	responses.Success(c, http.StatusOK, patients, "Assigned patients retrieved successfully")
}

// AssignPatient handles PUT /api/v1/care-professionals/:professional_id/patients/:patient_id
func (h *CareProfessionalHandler) AssignPatient(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	patientID, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	if err := h.professionalService.Assign(c.Request.Context(), a, id, patientID); err != nil {
		responses.Error(c, err, "Failed to assign patient")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Patient assigned successfully")
}

// UnassignPatient handles DELETE /api/v1/care-professionals/:professional_id/patients/:patient_id
func (h *CareProfessionalHandler) UnassignPatient(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "professional_id")
	if !ok {
		return
	}
	patientID, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	if err := h.professionalService.Unassign(c.Request.Context(), a, id, patientID); err != nil {
		responses.Error(c, err, "Failed to unassign patient")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Patient unassigned successfully")
}
