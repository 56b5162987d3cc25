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

type CareProfessionalRepository struct {
	pool *pgxpool.Pool
}

func NewCareProfessionalRepository(pool *pgxpool.Pool) *CareProfessionalRepository {
	return &CareProfessionalRepository{pool: pool}
}

const careProfessionalColumns = `id, tenant_id, first_name, last_name, role, email, phone,
	registration_number, hourly_rate_pence, active, created_at, updated_at`

func scanCareProfessional(row pgx.Row) (*models.CareProfessional, error) {
	var c models.CareProfessional
	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.FirstName,
		&c.LastName,
		&c.Role,
		&c.Email,
		&c.Phone,
		&c.RegistrationNumber,
		&c.HourlyRatePence,
		&c.Active,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CareProfessionalRepository) Create(ctx context.Context, c *models.CareProfessional) error {
	c.Prepare()

	query := `
		INSERT INTO care_professionals (id, tenant_id, first_name, last_name, role, email, phone,
			registration_number, hourly_rate_pence, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.ID, c.TenantID, c.FirstName, c.LastName, c.Role, c.Email, c.Phone,
		c.RegistrationNumber, c.HourlyRatePence, c.Active,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CareProfessionalRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CareProfessional, error) {
	query := `SELECT ` + careProfessionalColumns + ` FROM care_professionals WHERE tenant_id = $1 AND id = $2`
	return scanCareProfessional(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

func (r *CareProfessionalRepository) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.CareProfessional, error) {
	query := `
		SELECT ` + careProfessionalColumns + ` FROM care_professionals
		WHERE tenant_id = $1 AND ($2 = FALSE OR active)
		ORDER BY last_name, first_name
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	professionals := []models.CareProfessional{}
	for rows.Next() {
		c, err := scanCareProfessional(rows)
		if err != nil {
			return nil, err
		}
		professionals = append(professionals, *c)
	}
	return professionals, rows.Err()
}

func (r *CareProfessionalRepository) Update(ctx context.Context, c *models.CareProfessional) error {
	query := `
		UPDATE care_professionals SET
			first_name = $3, last_name = $4, role = $5, email = $6, phone = $7,
			registration_number = $8, hourly_rate_pence = $9, active = $10, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.TenantID, c.ID, c.FirstName, c.LastName, c.Role, c.Email, c.Phone,
		c.RegistrationNumber, c.HourlyRatePence, c.Active,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *CareProfessionalRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM care_professionals WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Assign is idempotent.
func (r *CareProfessionalRepository) Assign(ctx context.Context, tenantID, careProfessionalID, patientID uuid.UUID) error {
	query := `
		INSERT INTO patient_assignments (tenant_id, patient_id, care_professional_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, care_professional_id) DO NOTHING
	`
	_, err := database.Conn(ctx, r.pool).Exec(ctx, query, tenantID, patientID, careProfessionalID)
	return err
}

func (r *CareProfessionalRepository) Unassign(ctx context.Context, tenantID, careProfessionalID, patientID uuid.UUID) error {
	query := `DELETE FROM patient_assignments WHERE tenant_id = $1 AND care_professional_id = $2 AND patient_id = $3`
	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, tenantID, careProfessionalID, patientID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
