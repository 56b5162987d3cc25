package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complexcare/internal/handlers"
	"complexcare/internal/metrics"
	"complexcare/internal/middlewares"
)

// Guards are the middleware chains route groups are registered behind.
type Guards struct {
	Authenticate gin.HandlerFunc
	RateLimit    gin.HandlerFunc
	TenantScope  gin.HandlerFunc
}

// Tenant protects routes that act on the caller's (or, for a superadmin,
// the selected) tenant.
func (g Guards) Tenant() []gin.HandlerFunc {
	return []gin.HandlerFunc{g.Authenticate, g.RateLimit, g.TenantScope}
}

func (g Guards) Superadmin() []gin.HandlerFunc {
	return []gin.HandlerFunc{g.Authenticate, g.RateLimit, middlewares.RequireSuperadmin()}
}

type Handlers struct {
	Auth             *handlers.AuthHandler
	GoogleAuth       *handlers.GoogleAuthHandler // nil when Google sign-in is not configured
	User             *handlers.UserHandler
	Tenant           *handlers.TenantHandler
	Patient          *handlers.PatientHandler
	CareProfessional *handlers.CareProfessionalHandler
	Credential       *handlers.CredentialHandler
	ClinicalNote     *handlers.ClinicalNoteHandler
	Appointment      *handlers.AppointmentHandler
	Medication       *handlers.MedicationHandler
	Payroll          *handlers.PayrollHandler
	Invoice          *handlers.InvoiceHandler
	Integration      *handlers.IntegrationHandler
	Diagnostics      *handlers.DiagnosticsHandler
	Dashboard        *handlers.DashboardHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, g Guards) {
	api := router.Group("/api/v1")

	NewAuthRoutes(h.Auth, h.GoogleAuth).RegisterRoutes(api, g)
	NewUserRoutes(h.User).RegisterRoutes(api, g)
	NewTenantRoutes(h.Tenant).RegisterRoutes(api, g)
	NewPatientRoutes(h.Patient, h.ClinicalNote, h.Medication).RegisterRoutes(api, g)
	NewCareProfessionalRoutes(h.CareProfessional, h.Credential).RegisterRoutes(api, g)
	NewAppointmentRoutes(h.Appointment).RegisterRoutes(api, g)
	NewFinanceRoutes(h.Payroll, h.Invoice).RegisterRoutes(api, g)
	NewIntegrationRoutes(h.Integration).RegisterRoutes(api, g)
	NewDiagnosticsRoutes(h.Diagnostics).RegisterRoutes(api, g)
	NewDashboardRoutes(h.Dashboard).RegisterRoutes(api, g)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
