package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceDraft   = "draft"
	InvoiceSent    = "sent"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
	InvoiceVoid    = "void"
)

type InvoiceLine struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1"`
	UnitPricePence int64     `json:"unit_price_pence" binding:"min=0"`
}

func (l InvoiceLine) TotalPence() int64 {
	return int64(l.Quantity) * l.UnitPricePence
}

type Invoice struct {
	ID            uuid.UUID     `json:"id"`
	TenantID      uuid.UUID     `json:"tenant_id"`
	PatientID     uuid.UUID     `json:"patient_id"`
	Number        string        `json:"number"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       time.Time     `json:"due_date"`
	Status        string        `json:"status"`
	TaxRateBP     int           `json:"tax_rate_bp"`
	SubtotalPence int64         `json:"subtotal_pence"`
	TaxPence      int64         `json:"tax_pence"`
	TotalPence    int64         `json:"total_pence"`
	Lines         []InvoiceLine `json:"lines"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (i *Invoice) Prepare() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	for idx := range i.Lines {
		if i.Lines[idx].ID == uuid.Nil {
			i.Lines[idx].ID = uuid.New()
		}
	}
	if i.Status == "" {
		i.Status = InvoiceDraft
	}
	i.ComputeTotals()
}

// ComputeTotals sums the lines and applies the tax rate, given in basis
// points, rounding half up to the penny.
func (i *Invoice) ComputeTotals() {
	var subtotal int64
	for _, l := range i.Lines {
		subtotal += l.TotalPence()
	}
	i.SubtotalPence = subtotal
	i.TaxPence = (subtotal*int64(i.TaxRateBP) + 5000) / 10000
	i.TotalPence = subtotal + i.TaxPence
}

// EffectiveStatus reports sent invoices past their due date as overdue.
func (i *Invoice) EffectiveStatus(now time.Time) string {
	if i.Status == InvoiceSent && dateOf(i.DueDate).Before(dateOf(now)) {
		return InvoiceOverdue
	}
	return i.Status
}

func InvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}
