package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
	AppointmentNoShow    = "no_show"
)

var AppointmentStatuses = []string{AppointmentScheduled, AppointmentCompleted, AppointmentCancelled, AppointmentNoShow}

type Appointment struct {
	ID                 uuid.UUID `json:"id"`
	TenantID           uuid.UUID `json:"tenant_id"`
	PatientID          uuid.UUID `json:"patient_id"`
	CareProfessionalID uuid.UUID `json:"care_professional_id"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
	Status             string    `json:"status"`
	Location           *string   `json:"location,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func (a *Appointment) Prepare() {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentScheduled
	}
}

// Overlaps reports whether the two half-open intervals intersect.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartsAt.Before(end) && start.Before(a.EndsAt)
}

type AppointmentFilter struct {
	From               *time.Time
	To                 *time.Time
	PatientID          *uuid.UUID
	CareProfessionalID *uuid.UUID
	Status             string
}
