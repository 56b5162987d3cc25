package routes

import (
	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
)

type CareProfessionalRoutes struct {
	professionals *handlers.CareProfessionalHandler
	credentials   *handlers.CredentialHandler
}

func NewCareProfessionalRoutes(professionals *handlers.CareProfessionalHandler, credentials *handlers.CredentialHandler) *CareProfessionalRoutes {
	return &CareProfessionalRoutes{professionals: professionals, credentials: credentials}
}

func (r *CareProfessionalRoutes) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	pros := router.Group("/care-professionals", g.Tenant()...)
	{
		pros.POST("", r.professionals.CreateCareProfessional)
		pros.GET("", r.professionals.ListCareProfessionals)
		pros.GET("/:professional_id", r.professionals.GetCareProfessional)
		pros.PATCH("/:professional_id", r.professionals.UpdateCareProfessional)
		pros.DELETE("/:professional_id", r.professionals.DeleteCareProfessional)

		pros.GET("/:professional_id/patients", r.professionals.ListPatients)
		pros.PUT("/:professional_id/patients/:patient_id", r.professionals.AssignPatient)
		pros.DELETE("/:professional_id/patients/:patient_id", r.professionals.UnassignPatient)

		pros.POST("/:professional_id/credentials", r.credentials.CreateCredential)
		pros.GET("/:professional_id/credentials", r.credentials.ListCredentials)
	}

	creds := router.Group("/credentials", g.Tenant()...)
	{
		creds.GET("/expiring", r.credentials.ListExpiring)
		creds.GET("/:credential_id", r.credentials.GetCredential)
		creds.PUT("/:credential_id", r.credentials.UpdateCredential)
		creds.DELETE("/:credential_id", r.credentials.DeleteCredential)
		creds.GET("/:credential_id/history", r.credentials.CredentialHistory)
	}
}
