package models

import (
	"time"

	"github.com/google/uuid"
)

type PatientMedication struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	PatientID  uuid.UUID  `json:"patient_id"`
	DMDCode    *string    `json:"dmd_code,omitempty"`
	Name       string     `json:"name"`
	Dose       *string    `json:"dose,omitempty"`
	Route      *string    `json:"route,omitempty"`
	Frequency  *string    `json:"frequency,omitempty"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Prescriber *string    `json:"prescriber,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (m *PatientMedication) Prepare() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.StartDate.IsZero() {
		m.StartDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
}

const (
	DMDTypeVTM = "VTM"
	DMDTypeVMP = "VMP"
	DMDTypeAMP = "AMP"
)

// DMDProduct is one entry of the NHS Dictionary of Medicines and Devices.
type DMDProduct struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Supplier string `json:"supplier,omitempty"`
}

type DMDSearchResult struct {
	Query    string       `json:"query"`
	Products []DMDProduct `json:"products"`
	Source   string       `json:"source"` // "cache", "live", "stale" or "mock"
	Mock     bool         `json:"mock,omitempty"`
}

type DMDDetail struct {
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
	Related    []DMDProduct      `json:"related,omitempty"`
	Mock       bool              `json:"mock,omitempty"`
}
