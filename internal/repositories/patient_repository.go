package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type PatientRepository struct {
	pool *pgxpool.Pool
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

const patientColumns = `id, tenant_id, nhs_number, first_name, last_name, date_of_birth, gender,
	phone, email, address, gp_practice_code, status, created_at, updated_at`

func scanPatient(row pgx.Row) (*models.Patient, error) {
	var p models.Patient
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.NHSNumber,
		&p.FirstName,
		&p.LastName,
		&p.DateOfBirth,
		&p.Gender,
		&p.Phone,
		&p.Email,
		&p.Address,
		&p.GPPracticeCode,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]models.Patient, error) {
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

func (r *PatientRepository) Create(ctx context.Context, p *models.Patient) error {
	p.Prepare()

	query := `
		INSERT INTO patients (id, tenant_id, nhs_number, first_name, last_name, date_of_birth, gender,
			phone, email, address, gp_practice_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		p.ID, p.TenantID, p.NHSNumber, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.Address, p.GPPracticeCode, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PatientRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE tenant_id = $1 AND id = $2`
	return scanPatient(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

func (r *PatientRepository) List(ctx context.Context, tenantID uuid.UUID, f models.PatientFilter) ([]models.Patient, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{tenantID}

	if f.Search != "" {
		// strpos matches the term literally, so % and _ are not wildcards.
		args = append(args, strings.ToLower(f.Search))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(strpos(lower(first_name || ' ' || last_name), $%d) > 0 OR strpos(nhs_number, $%d) > 0)", n, n))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM patients
		WHERE %s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d
	`, patientColumns, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectPatients(rows)
}

func (r *PatientRepository) ListByCareProfessional(ctx context.Context, tenantID, careProfessionalID uuid.UUID) ([]models.Patient, error) {
	query := `
		SELECT p.id, p.tenant_id, p.nhs_number, p.first_name, p.last_name, p.date_of_birth, p.gender,
			p.phone, p.email, p.address, p.gp_practice_code, p.status, p.created_at, p.updated_at
		FROM patients p
		JOIN patient_assignments a ON a.patient_id = p.id
		WHERE a.tenant_id = $1 AND a.care_professional_id = $2
		ORDER BY p.last_name, p.first_name
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, careProfessionalID)
	if err != nil {
		return nil, err
	}
	return collectPatients(rows)
}

func (r *PatientRepository) Update(ctx context.Context, p *models.Patient) error {
	query := `
		UPDATE patients SET
			nhs_number = $3, first_name = $4, last_name = $5, date_of_birth = $6, gender = $7,
			phone = $8, email = $9, address = $10, gp_practice_code = $11, status = $12, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		p.TenantID, p.ID, p.NHSNumber, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.Phone, p.Email, p.Address, p.GPPracticeCode, p.Status,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PatientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM patients WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
