package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `id, tenant_id, patient_id, care_professional_id, starts_at, ends_at, status, location, notes, created_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.PatientID,
		&a.CareProfessionalID,
		&a.StartsAt,
		&a.EndsAt,
		&a.Status,
		&a.Location,
		&a.Notes,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]models.Appointment, error) {
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *a)
	}
	return appointments, rows.Err()
}

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	a.Prepare()

	query := `
		INSERT INTO appointments (id, tenant_id, patient_id, care_professional_id, starts_at, ends_at, status, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		a.ID, a.TenantID, a.PatientID, a.CareProfessionalID, a.StartsAt, a.EndsAt, a.Status, a.Location, a.Notes,
	).Scan(&a.CreatedAt)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE tenant_id = $1 AND id = $2`
	return scanAppointment(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

func (r *AppointmentRepository) List(ctx context.Context, tenantID uuid.UUID, f models.AppointmentFilter) ([]models.Appointment, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{tenantID}

	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}
	if f.From != nil {
		add("ends_at > $%d", *f.From)
	}
	if f.To != nil {
		add("starts_at < $%d", *f.To)
	}
	if f.PatientID != nil {
		add("patient_id = $%d", *f.PatientID)
	}
	if f.CareProfessionalID != nil {
		add("care_professional_id = $%d", *f.CareProfessionalID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY starts_at`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// LockProfessional takes a row lock on the care professional for the rest of
// the surrounding transaction, so overlap checks and bookings for one
// professional run one at a time.
func (r *AppointmentRepository) LockProfessional(ctx context.Context, tenantID, careProfessionalID uuid.UUID) error {
	var one int
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT 1 FROM care_professionals WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, careProfessionalID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// FindOverlapping returns the professional's non-cancelled appointments that
// intersect [start, end), ignoring excludeID when set.
func (r *AppointmentRepository) FindOverlapping(ctx context.Context, tenantID, careProfessionalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + ` FROM appointments
		WHERE tenant_id = $1 AND care_professional_id = $2
		  AND status <> 'cancelled'
		  AND starts_at < $4 AND ends_at > $3
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY starts_at
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, careProfessionalID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE appointments SET status = $3 WHERE tenant_id = $1 AND id = $2`, tenantID, id, status)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
