package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.Prepare()

	query := `
		INSERT INTO notifications (id, tenant_id, kind, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query, n.ID, n.TenantID, n.Kind, n.Title, n.Body).Scan(&n.CreatedAt)
}

func (r *NotificationRepository) List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, tenant_id, kind, title, body, read_at, created_at
		FROM notifications
		WHERE tenant_id = $1 AND ($2 = FALSE OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, NOW()) WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
