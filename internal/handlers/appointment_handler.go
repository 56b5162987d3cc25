package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"complexcare/internal/demo"
	"complexcare/internal/models"
	"complexcare/internal/responses"
	"complexcare/internal/services"
)

type AppointmentHandler struct {
	appointmentService *services.AppointmentService
	demo               DemoMode
}

func NewAppointmentHandler(appointmentService *services.AppointmentService, demoMode DemoMode) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService, demo: demoMode}
}

// CreateAppointment handles POST /api/v1/appointments
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in services.AppointmentInput
	if !bindJSON(c, &in) {
		return
	}
	appt, err := h.appointmentService.Create(c.Request.Context(), a, in)
	if err != nil {
		responses.Error(c, err, "Failed to create appointment")
		return
	}
	responses.Success(c, http.StatusCreated, appt, "Appointment created successfully")
}

func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, raw); err != nil {
			responses.Fail(c, http.StatusBadRequest, nil, "Invalid "+name+", expected RFC 3339 or YYYY-MM-DD")
			return nil, false
		}
	}
	return &t, true
}

// ListAppointments handles GET /api/v1/appointments?from=&to=&patient_id=&care_professional_id=&status=
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	f := models.AppointmentFilter{Status: c.Query("status")}
	if f.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if f.To, ok = queryTime(c, "to"); !ok {
		return
	}
	if f.PatientID, ok = queryUUID(c, "patient_id"); !ok {
		return
	}
	if f.CareProfessionalID, ok = queryUUID(c, "care_professional_id"); !ok {
		return
	}

	list, err := h.appointmentService.List(c.Request.Context(), a, f)
	if err != nil {
		if h.demo.serve(c, err, "appointments", func() any { return demo.Appointments(a.TenantID, time.Now()) }) {
			return
		}
		responses.Error(c, err, "Failed to retrieve appointments")
		return
	}
	responses.Success(c, http.StatusOK, list, "Appointments retrieved successfully")
}

// GetAppointment handles GET /api/v1/appointments/:appointment_id
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "appointment_id")
	if !ok {
		return
	}
	appt, err := h.appointmentService.Get(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve appointment")
		return
	}
	responses.Success(c, http.StatusOK, appt, "Appointment retrieved successfully")
}

// UpdateStatus handles PATCH /api/v1/appointments/:appointment_id/status
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "appointment_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	appt, err := h.appointmentService.UpdateStatus(c.Request.Context(), a, id, req.Status)
	if err != nil {
		responses.Error(c, err, "Failed to update appointment")
		return
	}
	responses.Success(c, http.StatusOK, appt, "Appointment updated successfully")
}

// CancelAppointment handles POST /api/v1/appointments/:appointment_id/cancel
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "appointment_id")
	if !ok {
		return
	}
	appt, err := h.appointmentService.Cancel(c.Request.Context(), a, id)
	if err != nil {
		responses.Error(c, err, "Failed to cancel appointment")
		return
	}
	responses.Success(c, http.StatusOK, appt, "Appointment cancelled")
}
