package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type InvoiceStore interface {
	NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int, error)
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, patientID *uuid.UUID) ([]models.Invoice, error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, from, to string) (bool, error)
}

type InvoiceService struct {
	invoices InvoiceStore
	patients PatientGetter
	tx       Transactor
	log      *zap.Logger
	now      func() time.Time
}

func NewInvoiceService(invoices InvoiceStore, patients PatientGetter, tx Transactor, log *zap.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, patients: patients, tx: tx, log: log, now: time.Now}
}

type InvoiceInput struct {
	PatientID uuid.UUID            `json:"patient_id"`
	IssueDate *string              `json:"issue_date"`
	DueDate   *string              `json:"due_date"`
	TaxRateBP int                  `json:"tax_rate_bp"`
	Lines     []models.InvoiceLine `json:"lines"`
}

const defaultPaymentTerms = 30

// invoiceTransitions lists the statuses each stored status may move to.
var invoiceTransitions = map[string][]string{
	models.InvoiceDraft: {models.InvoiceSent, models.InvoiceVoid},
	models.InvoiceSent:  {models.InvoicePaid, models.InvoiceVoid},
}

func (s *InvoiceService) withStatus(inv *models.Invoice) *models.Invoice {
	inv.Status = inv.EffectiveStatus(s.now())
	return inv
}

// Create stores a draft invoice, numbering it INV-YYYY-NNNN from the tenant's
// counter for the issue year in the same transaction.
func (s *InvoiceService) Create(ctx context.Context, actor Actor, in InvoiceInput) (*models.Invoice, error) {
	if len(in.Lines) == 0 {
		return nil, invalidf("at least one line is required")
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.Description) == "" || l.Quantity <= 0 || l.UnitPricePence < 0 {
			return nil, invalidf("line %d needs a description, a positive quantity and a non-negative price", i+1)
		}
	}
	if in.TaxRateBP < 0 || in.TaxRateBP > 10000 {
		return nil, invalidf("tax_rate_bp must be between 0 and 10000")
	}

	issue, err := parseDate("issue_date", in.IssueDate)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		today := startOfDay(s.now())
		issue = &today
	}
	due, err := parseDate("due_date", in.DueDate)
	if err != nil {
		return nil, err
	}
	if due == nil {
		d := issue.AddDate(0, 0, defaultPaymentTerms)
		due = &d
	}
	if due.Before(*issue) {
		return nil, invalidf("due_date must not be before issue_date")
	}

	inv := &models.Invoice{
		TenantID:  actor.TenantID,
		PatientID: in.PatientID,
		IssueDate: *issue,
		DueDate:   *due,
		TaxRateBP: in.TaxRateBP,
		Lines:     in.Lines,
	}
	inv.Prepare()

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := requirePatient(ctx, s.patients, actor.TenantID, in.PatientID); err != nil {
			return err
		}
		seq, err := s.invoices.NextSequence(ctx, actor.TenantID, inv.IssueDate.Year())
		if err != nil {
			return storeErr("allocate invoice number", err)
		}
		inv.Number = models.InvoiceNumber(inv.IssueDate.Year(), seq)
		return storeErr("create invoice", s.invoices.Create(ctx, inv))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("invoice created", zap.String("tenant_id", actor.TenantID.String()), zap.String("number", inv.Number))
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get invoice", err)
	}
	if inv == nil {
		return nil, notFound("invoice")
	}
	return s.withStatus(inv), nil
}

// List returns invoices, optionally for one patient, filtered by effective
// status when status is set.
func (s *InvoiceService) List(ctx context.Context, actor Actor, patientID *uuid.UUID, status string) ([]models.Invoice, error) {
	list, err := s.invoices.List(ctx, actor.TenantID, patientID)
	if err != nil {
		return nil, storeErr("list invoices", err)
	}
	out := make([]models.Invoice, 0, len(list))
	for i := range list {
		s.withStatus(&list[i])
		if status == "" || list[i].Status == status {
			out = append(out, list[i])
		}
	}
	return out, nil
}

// SetStatus applies a transition: draft to sent or void, sent (or overdue)
// to paid or void.
func (s *InvoiceService) SetStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get invoice", err)
	}
	if inv == nil {
		return nil, notFound("invoice")
	}

	allowed := false
	for _, next := range invoiceTransitions[inv.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot move invoice from %s to %s", ErrConflict, inv.Status, status)
	}

	changed, err := s.invoices.Transition(ctx, actor.TenantID, id, inv.Status, status)
	if err != nil {
		return nil, storeErr("update invoice", err)
	}
	if !changed {
		return nil, fmt.Errorf("%w: invoice changed status concurrently", ErrConflict)
	}
	inv.Status = status
	return s.withStatus(inv), nil
}

// Workbook exports invoices as an xlsx sheet, one row per invoice.
func (s *InvoiceService) Workbook(ctx context.Context, actor Actor, status string) ([]byte, error) {
	list, err := s.List(ctx, actor, nil, status)
	if err != nil {
		return nil, err
	}
	headers := []string{"Number", "Patient ID", "Issue Date", "Due Date", "Status", "Subtotal", "Tax", "Total"}
	rows := make([][]any, len(list))
	for i, inv := range list {
		rows[i] = []any{
			inv.Number,
			inv.PatientID.String(),
			inv.IssueDate.Format(dateLayout),
			inv.DueDate.Format(dateLayout),
			inv.Status,
			models.PenceToPounds(inv.SubtotalPence),
			models.PenceToPounds(inv.TaxPence),
			models.PenceToPounds(inv.TotalPence),
		}
	}
	return writeWorkbook("Invoices", headers, rows)
}
