package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type InvoiceRepository struct {
	pool *pgxpool.Pool
}

func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, tenant_id, patient_id, number, issue_date, due_date, status, tax_rate_bp,
	subtotal_pence, tax_pence, total_pence, created_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var i models.Invoice
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.PatientID,
		&i.Number,
		&i.IssueDate,
		&i.DueDate,
		&i.Status,
		&i.TaxRateBP,
		&i.SubtotalPence,
		&i.TaxPence,
		&i.TotalPence,
		&i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &i, nil
}

// NextSequence bumps the tenant's invoice counter for year and returns the
// new value. Call it inside the transaction that inserts the invoice.
func (r *InvoiceRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int, error) {
	query := `
		INSERT INTO invoice_number_counters (tenant_id, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year) DO UPDATE SET last_value = invoice_number_counters.last_value + 1
		RETURNING last_value
	`
	var seq int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, year).Scan(&seq)
	return seq, err
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	conn := database.Conn(ctx, r.pool)

	query := `
		INSERT INTO invoices (id, tenant_id, patient_id, number, issue_date, due_date, status, tax_rate_bp,
			subtotal_pence, tax_pence, total_pence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	err := conn.QueryRow(ctx, query,
		inv.ID, inv.TenantID, inv.PatientID, inv.Number, inv.IssueDate, inv.DueDate, inv.Status, inv.TaxRateBP,
		inv.SubtotalPence, inv.TaxPence, inv.TotalPence,
	).Scan(&inv.CreatedAt)
	if err != nil {
		return err
	}

	for _, l := range inv.Lines {
		_, err := conn.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, description, quantity, unit_price_pence)
			VALUES ($1, $2, $3, $4, $5)
		`, l.ID, inv.ID, l.Description, l.Quantity, l.UnitPricePence)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`
	inv, err := scanInvoice(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
	if err != nil || inv == nil {
		return inv, err
	}

	inv.Lines, err = r.lines(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) lines(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLine, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, description, quantity, unit_price_pence
		FROM invoice_lines WHERE invoice_id = $1
		ORDER BY description
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []models.InvoiceLine{}
	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(&l.ID, &l.Description, &l.Quantity, &l.UnitPricePence); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// List returns invoices without their lines.
func (r *InvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, patientID *uuid.UUID) ([]models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE tenant_id = $1 AND ($2::uuid IS NULL OR patient_id = $2)
		ORDER BY issue_date DESC, number DESC
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// Transition sets the invoice status to to if it is still from. It reports
// false when the invoice is missing or has moved on.
func (r *InvoiceRepository) Transition(ctx context.Context, tenantID, id uuid.UUID, from, to string) (bool, error) {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE invoices SET status = $4 WHERE tenant_id = $1 AND id = $2 AND status = $3`, tenantID, id, from, to)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
