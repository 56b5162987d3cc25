package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type DashboardRepository struct {
	pool *pgxpool.Pool
}

func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// Summary gathers the tenant's headline counts in one round trip. now fixes
// the day used for "today" and the credential expiry window.
func (r *DashboardRepository) Summary(ctx context.Context, tenantID uuid.UUID, now time.Time, expiryWindow time.Duration) (*models.DashboardSummary, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE tenant_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM care_professionals WHERE tenant_id = $1 AND active),
			(SELECT COUNT(*) FROM appointments
				WHERE tenant_id = $1 AND starts_at >= $2 AND starts_at < $3 AND status <> 'cancelled'),
			(SELECT COUNT(*) FROM credentials
				WHERE tenant_id = $1 AND expires_on IS NOT NULL AND expires_on >= $2::date AND expires_on <= $4::date),
			(SELECT COALESCE(SUM(total_pence), 0)::BIGINT FROM invoices WHERE tenant_id = $1 AND status = 'sent'),
			(SELECT COUNT(*) FROM notifications WHERE tenant_id = $1 AND read_at IS NULL)
	`
	var s models.DashboardSummary
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, tenantID, dayStart, dayEnd, dayStart.Add(expiryWindow)).Scan(
		&s.Patients,
		&s.ActiveCareProfessionals,
		&s.AppointmentsToday,
		&s.CredentialsExpiringSoon,
		&s.UnpaidInvoiceTotalPence,
		&s.UnreadNotifications,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
