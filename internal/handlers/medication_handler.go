package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type MedicationHandler struct {
	medicationService *services.MedicationService
}

func NewMedicationHandler(medicationService *services.MedicationService) *MedicationHandler {
	return &MedicationHandler{medicationService: medicationService}
}

// AddMedication handles POST /api/v1/patients/:patient_id/medications
func (h *MedicationHandler) AddMedication(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	patientID, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	var in services.MedicationInput
	if !bindJSON(c, &in) {
		return
	}
	med, err := h.medicationService.Add(c.Request.Context(), a, patientID, in)
	if err != nil {
		responses.Error(c, err, "Failed to add medication")
		return
	}
	responses.Success(c, http.StatusCreated, med, "Medication added successfully")
}

// ListMedications handles GET /api/v1/patients/:patient_id/medications
func (h *MedicationHandler) ListMedications(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	patientID, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	meds, err := h.medicationService.ListByPatient(c.Request.Context(), a, patientID)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve medications")
		return
	}
	responses.Success(c, http.StatusOK, meds, "Medications retrieved successfully")
}

// StopMedication handles POST /api/v1/medications/:medication_id/stop
func (h *MedicationHandler) StopMedication(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "medication_id")
	if !ok {
		return
	}
	var req struct {
		EndDate *string `json:"end_date"`
	}
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	med, err := h.medicationService.Stop(c.Request.Context(), a, id, req.EndDate)
	if err != nil {
		responses.Error(c, err, "Failed to stop medication")
		return
	}
	responses.Success(c, http.StatusOK, med, "Medication stopped")
}
