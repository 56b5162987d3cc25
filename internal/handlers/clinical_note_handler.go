package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type ClinicalNoteHandler struct {
	noteService *services.ClinicalNoteService
}

func NewClinicalNoteHandler(noteService *services.ClinicalNoteService) *ClinicalNoteHandler {
	return &ClinicalNoteHandler{noteService: noteService}
}

// CreateNote handles POST /api/v1/patients/:patient_id/notes
func (h *ClinicalNoteHandler) CreateNote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	patientID, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	var in services.ClinicalNoteInput
	if !bindJSON(c, &in) {
		return
	}
	note, err := h.noteService.Create(c.Request.Context(), a, patientID, in)
	if err != nil {
		responses.Error(c, err, "Failed to create clinical note")
		return
	}
	responses.Success(c, http.StatusCreated, note, "Clinical note created successfully")
}

// ListNotes handles GET /api/v1/patients/:patient_id/notes
func (h *ClinicalNoteHandler) ListNotes(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	patientID, ok := paramUUID(c, "patient_id")
	if !ok {
		return
	}
	notes, err := h.noteService.ListByPatient(c.Request.Context(), a, patientID)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve clinical notes")
		return
	}
	responses.Success(c, http.StatusOK, notes, "Clinical notes retrieved successfully")
}

// GetNote handles GET /api/v1/notes/:note_id
func (h *ClinicalNoteHandler) GetNote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "note_id")
	if !ok {
		return
	}
	note, err := h.noteService.Get(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve clinical note")
		return
	}
	responses.Success(c, http.StatusOK, note, "Clinical note retrieved successfully")
}

// UpdateNote handles PUT /api/v1/notes/:note_id
func (h *ClinicalNoteHandler) UpdateNote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "note_id")
	if !ok {
		return
	}
	var in services.ClinicalNoteInput
	if !bindJSON(c, &in) {
		return
	}
	note, err := h.noteService.Update(c.Request.Context(), a, id, in)
	if err != nil {
		responses.Error(c, err, "Failed to update clinical note")
		return
	}
	responses.Success(c, http.StatusOK, note, "Clinical note updated successfully")
}

// DeleteNote handles DELETE /api/v1/notes/:note_id
func (h *ClinicalNoteHandler) DeleteNote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "note_id")
	if !ok {
		return
	}
	if err := h.noteService.Delete(c.Request.Context(), a, id); err != nil {
		responses.Error(c, err, "Failed to delete clinical note")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Clinical note deleted successfully")
}
