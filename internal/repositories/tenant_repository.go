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

type TenantRepository struct {
	pool *pgxpool.Pool
}

func NewTenantRepository(pool *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{pool: pool}
}

const tenantColumns = `id, name, slug, status, contact_email, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.ContactEmail, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	tenant.Prepare()

	query := `
		INSERT INTO tenants (id, name, slug, status, contact_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.Status,
		tenant.ContactEmail,
	).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	return scanTenant(database.Conn(ctx, r.pool).QueryRow(ctx, query, slug))
}

func (r *TenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY name`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []models.Tenant{}
	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.ContactEmail, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants SET name = $2, status = $3, contact_email = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Status,
		tenant.ContactEmail,
	).Scan(&tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *TenantRepository) Stats(ctx context.Context, id uuid.UUID) (*models.TenantStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM care_professionals WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1)
	`
	stats := &models.TenantStats{TenantID: id}
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&stats.Patients,
		&stats.CareProfessionals,
		&stats.Appointments,
		&stats.Users,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
