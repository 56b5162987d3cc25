package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	PayrollDraft    = "draft"
	PayrollApproved = "approved"
	PayrollExported = "exported"
)

// PayrollRecord amounts are in pence.
type PayrollRecord struct {
	ID                 uuid.UUID `json:"id"`
	TenantID           uuid.UUID `json:"tenant_id"`
	CareProfessionalID uuid.UUID `json:"care_professional_id"`
	EmployeeName       string    `json:"employee_name,omitempty"`
	PeriodStart        time.Time `json:"period_start"`
	PeriodEnd          time.Time `json:"period_end"`
	RegularHours       float64   `json:"regular_hours"`
	OvertimeHours      float64   `json:"overtime_hours"`
	HourlyRatePence    int64     `json:"hourly_rate_pence"`
	OvertimeRatePence  int64     `json:"overtime_rate_pence"`
	DeductionsPence    int64     `json:"deductions_pence"`
	GrossPence         int64     `json:"gross_pence"`
	NetPence           int64     `json:"net_pence"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

func (p *PayrollRecord) Prepare() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PayrollDraft
	}
	p.ComputeTotals()
}

// ComputeTotals sets gross and net pay, rounding each component to the penny.
func (p *PayrollRecord) ComputeTotals() {
	regular := int64(math.Round(p.RegularHours * float64(p.HourlyRatePence)))
	overtime := int64(math.Round(p.OvertimeHours * float64(p.OvertimeRatePence)))
	p.GrossPence = regular + overtime
	p.NetPence = p.GrossPence - p.DeductionsPence
}

// PenceToPounds renders an amount as a decimal pounds value for exports.
func PenceToPounds(pence int64) float64 {
	return float64(pence) / 100
}
