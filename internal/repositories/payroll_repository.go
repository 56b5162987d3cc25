package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type PayrollRepository struct {
	pool *pgxpool.Pool
}

func NewPayrollRepository(pool *pgxpool.Pool) *PayrollRepository {
	return &PayrollRepository{pool: pool}
}

const payrollSelect = `
	SELECT p.id, p.tenant_id, p.care_professional_id, c.first_name || ' ' || c.last_name,
		p.period_start, p.period_end, p.regular_hours, p.overtime_hours,
		p.hourly_rate_pence, p.overtime_rate_pence, p.deductions_pence, p.gross_pence, p.net_pence,
		p.status, p.created_at
	FROM payroll_records p
	JOIN care_professionals c ON c.id = p.care_professional_id
`

func scanPayroll(row pgx.Row) (*models.PayrollRecord, error) {
	var p models.PayrollRecord
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.CareProfessionalID,
		&p.EmployeeName,
		&p.PeriodStart,
		&p.PeriodEnd,
		&p.RegularHours,
		&p.OvertimeHours,
		&p.HourlyRatePence,
		&p.OvertimeRatePence,
		&p.DeductionsPence,
		&p.GrossPence,
		&p.NetPence,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayrollRepository) Create(ctx context.Context, p *models.PayrollRecord) error {
	p.Prepare()

	query := `
		INSERT INTO payroll_records (id, tenant_id, care_professional_id, period_start, period_end,
			regular_hours, overtime_hours, hourly_rate_pence, overtime_rate_pence, deductions_pence,
			gross_pence, net_pence, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		p.ID, p.TenantID, p.CareProfessionalID, p.PeriodStart, p.PeriodEnd,
		p.RegularHours, p.OvertimeHours, p.HourlyRatePence, p.OvertimeRatePence, p.DeductionsPence,
		p.GrossPence, p.NetPence, p.Status,
	).Scan(&p.CreatedAt)
}

func (r *PayrollRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PayrollRecord, error) {
	query := payrollSelect + ` WHERE p.tenant_id = $1 AND p.id = $2`
	return scanPayroll(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

// ListByPeriod returns records whose pay period lies within [from, to].
func (r *PayrollRepository) ListByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time, status string) ([]models.PayrollRecord, error) {
	query := payrollSelect + `
		WHERE p.tenant_id = $1 AND p.period_start >= $2 AND p.period_end <= $3
		  AND ($4 = '' OR p.status = $4)
		ORDER BY p.period_start, c.last_name, c.first_name
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, from, to, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.PayrollRecord{}
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}

// Transition moves the records in ids from status from to status to. Records
// in any other status are left alone and not counted.
func (r *PayrollRepository) Transition(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, from, to string) (int64, error) {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE payroll_records SET status = $4
		 WHERE tenant_id = $1 AND id = ANY($2) AND status = $3`, tenantID, ids, from, to)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
