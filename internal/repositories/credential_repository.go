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

type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

const credentialColumns = `id, tenant_id, care_professional_id, type, reference, issued_on, expires_on,
	reminder_date, reminder_sent, created_at, updated_at`

func scanCredential(row pgx.Row) (*models.Credential, error) {
	var c models.Credential
	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.CareProfessionalID,
		&c.Type,
		&c.Reference,
		&c.IssuedOn,
		&c.ExpiresOn,
		&c.ReminderDate,
		&c.ReminderSent,
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

func collectCredentials(rows pgx.Rows) ([]models.Credential, error) {
	defer rows.Close()

	credentials := []models.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, *c)
	}
	return credentials, rows.Err()
}

func (r *CredentialRepository) Create(ctx context.Context, c *models.Credential) error {
	c.Prepare()

	query := `
		INSERT INTO credentials (id, tenant_id, care_professional_id, type, reference, issued_on, expires_on, reminder_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING reminder_sent, created_at, updated_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.ID, c.TenantID, c.CareProfessionalID, c.Type, c.Reference, c.IssuedOn, c.ExpiresOn, c.ReminderDate,
	).Scan(&c.ReminderSent, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CredentialRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE tenant_id = $1 AND id = $2`
	return scanCredential(database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, id))
}

// Update rewrites the credential. A changed reminder date re-arms the reminder.
func (r *CredentialRepository) Update(ctx context.Context, c *models.Credential) error {
	c.ReminderDate = models.ReminderDateFor(c.ExpiresOn)

	query := `
		UPDATE credentials SET
			type = $3, reference = $4, issued_on = $5, expires_on = $6,
			reminder_sent = CASE WHEN reminder_date IS DISTINCT FROM $7 THEN FALSE ELSE reminder_sent END,
			reminder_date = $7,
			updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING care_professional_id, reminder_sent, created_at, updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.TenantID, c.ID, c.Type, c.Reference, c.IssuedOn, c.ExpiresOn, c.ReminderDate,
	).Scan(&c.CareProfessionalID, &c.ReminderSent, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *CredentialRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM credentials WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CredentialRepository) InsertAudit(ctx context.Context, a *models.CredentialAudit) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `
		INSERT INTO credential_audit (id, tenant_id, credential_id, action, actor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query, a.ID, a.TenantID, a.CredentialID, a.Action, a.ActorID).Scan(&a.CreatedAt)
}

func (r *CredentialRepository) ListAudit(ctx context.Context, tenantID, credentialID uuid.UUID) ([]models.CredentialAudit, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, tenant_id, credential_id, action, actor_id, created_at
		FROM credential_audit
		WHERE tenant_id = $1 AND credential_id = $2
		ORDER BY created_at
	`, tenantID, credentialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.CredentialAudit{}
	for rows.Next() {
		var a models.CredentialAudit
		if err := rows.Scan(&a.ID, &a.TenantID, &a.CredentialID, &a.Action, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

func (r *CredentialRepository) ListByProfessional(ctx context.Context, tenantID, careProfessionalID uuid.UUID) ([]models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + ` FROM credentials
		WHERE tenant_id = $1 AND care_professional_id = $2
		ORDER BY expires_on NULLS LAST
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, careProfessionalID)
	if err != nil {
		return nil, err
	}
	return collectCredentials(rows)
}

// ListExpiring returns credentials expiring on or before until, including
// ones already expired.
func (r *CredentialRepository) ListExpiring(ctx context.Context, tenantID uuid.UUID, until time.Time) ([]models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + ` FROM credentials
		WHERE tenant_id = $1 AND expires_on IS NOT NULL AND expires_on <= $2
		ORDER BY expires_on
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, until)
	if err != nil {
		return nil, err
	}
	return collectCredentials(rows)
}

// DueReminders returns unsent reminders across all tenants whose reminder
// date is on or before asOf.
func (r *CredentialRepository) DueReminders(ctx context.Context, asOf time.Time) ([]models.Credential, error) {
	query := `
		SELECT ` + credentialColumns + ` FROM credentials
		WHERE reminder_sent = FALSE AND reminder_date IS NOT NULL AND reminder_date <= $1
		ORDER BY reminder_date
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, asOf)
	if err != nil {
		return nil, err
	}
	return collectCredentials(rows)
}

func (r *CredentialRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE credentials SET reminder_sent = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}
