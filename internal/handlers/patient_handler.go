package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/demo"
	"complexcare/internal/models"
	"complexcare/internal/responses"
	"complexcare/internal/services"
	"complexcare/internal/utils"
)

type PatientHandler struct {
	patientService *services.PatientService
	demo           DemoMode
}

func NewPatientHandler(patientService *services.PatientService, demoMode DemoMode) *PatientHandler {
	return &PatientHandler{patientService: patientService, demo: demoMode}
}

// CreatePatient handles POST /api/v1/patients
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in services.PatientInput
	if !bindJSON(c, &in) {
		return
	}
	patient, err := h.patientService.Create(c.Request.Context(), a, in)
	if err != nil {
		responses.Error(c, err, "Failed to create patient")
		return
	}
	responses.Success(c, http.StatusCreated, patient, "Patient created successfully")
}

// ListPatients handles GET /api/v1/patients?search=&status=&limit=&offset=
func (h *PatientHandler) ListPatients(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	f := models.PatientFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Limit:  utils.Clamp(c.Query("limit"), services.DefaultPageSize, 1, services.MaxPageSize),
		Offset: utils.Clamp(c.Query("offset"), 0, 0, 1<<30),
	}
	patients, err := h.patientService.List(c.Request.Context(), a, f)
	if err != nil {
		if h.demo.serve(c, err, "patients", func() any { return demo.Patients(a.TenantID) }) {
			return
		}
		responses.Error(c, err, "Failed to retrieve patients")
		return
	}
	responses.Success(c, http.StatusOK, patients, "Patients retrieved successfully")
}

// GetPatient handles GET /api/v1/patients/:patient_id
func (h *PatientHandler) GetPatient(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	patient, err := h.patientService.Get(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve patient")
		return
	}
	responses.Success(c, http.StatusOK, patient, "Patient retrieved successfully")
}

// UpdatePatient handles PATCH /api/v1/patients/:patient_id
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	var in services.PatientInput
	if !bindJSON(c, &in) {
		return
	}
	patient, err := h.patientService.Update(c.Request.Context(), a, id, in)
	if err != nil {
		responses.Error(c, err, "Failed to update patient")
		return
	}
	responses.Success(c, http.StatusOK, patient, "Patient updated successfully")
}

// DeletePatient handles DELETE /api/v1/patients/:patient_id
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	if err := h.patientService.Delete(c.Request.Context(), a, id); err != nil {
		responses.Error(c, err, "Failed to delete patient")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Patient deleted successfully")
}
