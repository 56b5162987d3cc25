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

type ClinicalNoteRepository struct {
	pool *pgxpool.Pool
}

func NewClinicalNoteRepository(pool *pgxpool.Pool) *ClinicalNoteRepository {
	return &ClinicalNoteRepository{pool: pool}
}

const clinicalNoteColumns = `id, tenant_id, patient_id, author_id, category, content, created_at, updated_at`

func scanClinicalNote(row pgx.Row) (*models.ClinicalNote, error) {
	var n models.ClinicalNote
	err := row.Scan(&n.ID, &n.TenantID, &n.PatientID, &n.AuthorID, &n.Category, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *ClinicalNoteRepository) Create(ctx context.Context, n *models.ClinicalNote) error {
	n.Prepare()

	query := `
		INSERT INTO clinical_notes (id, tenant_id, patient_id, author_id, category, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		n.ID, n.TenantID, n.PatientID, n.AuthorID, n.Category, n.Content,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (r *ClinicalNoteRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ClinicalNote, error) {
	query := `SELECT ` + clinicalNoteColumns + ` FROM clinical_notes WHERE tenant_id = $1 AND id = $2`
	return scanClinicalNote(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

// ListByPatient returns the patient's notes, newest first.
func (r *ClinicalNoteRepository) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]models.ClinicalNote, error) {
	query := `
		SELECT ` + clinicalNoteColumns + ` FROM clinical_notes
		WHERE tenant_id = $1 AND patient_id = $2
		ORDER BY created_at DESC
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []models.ClinicalNote{}
	for rows.Next() {
		n, err := scanClinicalNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (r *ClinicalNoteRepository) Update(ctx context.Context, n *models.ClinicalNote) error {
	query := `
		UPDATE clinical_notes SET category = $3, content = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, n.TenantID, n.ID, n.Category, n.Content).Scan(&n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *ClinicalNoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM clinical_notes WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
