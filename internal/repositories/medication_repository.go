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

type MedicationRepository struct {
	pool *pgxpool.Pool
}

func NewMedicationRepository(pool *pgxpool.Pool) *MedicationRepository {
	return &MedicationRepository{pool: pool}
}

const medicationColumns = `id, tenant_id, patient_id, dmd_code, name, dose, route, frequency,
	start_date, end_date, prescriber, active, created_at`

func scanMedication(row pgx.Row) (*models.PatientMedication, error) {
	var m models.PatientMedication
	err := row.Scan(
		&m.ID,
		&m.TenantID,
		&m.PatientID,
		&m.DMDCode,
		&m.Name,
		&m.Dose,
		&m.Route,
		&m.Frequency,
		&m.StartDate,
		&m.EndDate,
		&m.Prescriber,
		&m.Active,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MedicationRepository) Create(ctx context.Context, m *models.PatientMedication) error {
	m.Prepare()
	m.Active = true

	query := `
		INSERT INTO patient_medications (id, tenant_id, patient_id, dmd_code, name, dose, route, frequency,
			start_date, prescriber, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		m.ID, m.TenantID, m.PatientID, m.DMDCode, m.Name, m.Dose, m.Route, m.Frequency,
		m.StartDate, m.Prescriber, m.Active,
	).Scan(&m.CreatedAt)
}

func (r *MedicationRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PatientMedication, error) {
	query := `SELECT ` + medicationColumns + ` FROM patient_medications WHERE tenant_id = $1 AND id = $2`
	return scanMedication(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

func (r *MedicationRepository) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]models.PatientMedication, error) {
	query := `
		SELECT ` + medicationColumns + ` FROM patient_medications
		WHERE tenant_id = $1 AND patient_id = $2
		ORDER BY active DESC, start_date DESC
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meds := []models.PatientMedication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, *m)
	}
	return meds, rows.Err()
}

// Stop ends an active medication on endDate.
func (r *MedicationRepository) Stop(ctx context.Context, tenantID, id uuid.UUID, endDate time.Time) (*models.PatientMedication, error) {
	query := `
		UPDATE patient_medications SET end_date = $3, active = FALSE
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + medicationColumns
	m, err := scanMedication(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id, endDate))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}
