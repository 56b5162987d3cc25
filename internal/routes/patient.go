package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

// PatientRoutes covers patients and the records hanging off them.
type PatientRoutes struct {
	patients    *handlers.PatientHandler
	notes       *handlers.ClinicalNoteHandler
	medications *handlers.MedicationHandler
}

func NewPatientRoutes(patients *handlers.PatientHandler, notes *handlers.ClinicalNoteHandler, medications *handlers.MedicationHandler) *PatientRoutes {
	return &PatientRoutes{patients: patients, notes: notes, medications: medications}
}

func (r *PatientRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	patients := router.Group("/patients", g.Tenant()...)
	{
		patients.POST("", r.patients.CreatePatient)
		patients.GET("", r.patients.ListPatients)
		patients.GET("/:patient_id", r.patients.GetPatient)
		patients.PATCH("/:patient_id", r.patients.UpdatePatient)
		patients.DELETE("/:patient_id", r.patients.DeletePatient)

		patients.POST("/:patient_id/notes", r.notes.CreateNote)
		patients.GET("/:patient_id/notes", r.notes.ListNotes)

		patients.POST("/:patient_id/medications", r.medications.AddMedication)
		patients.GET("/:patient_id/medications", r.medications.ListMedications)
	}

	notes := router.Group("/notes", g.Tenant()...)
	{
		notes.GET("/:note_id", r.notes.GetNote)
		notes.PUT("/:note_id", r.notes.UpdateNote)
		notes.DELETE("/:note_id", r.notes.DeleteNote)
	}

	medications := router.Group("/medications", g.Tenant()...)
	medications.POST("/:medication_id/stop", r.medications.StopMedication)
}
