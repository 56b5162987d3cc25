package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"complexcare/internal/models"
)

type DashboardStore interface {
	Summary(ctx context.Context, tenantID uuid.UUID, now time.Time, expiryWindow time.Duration) (*models.DashboardSummary, error)
}

type NotificationStore interface {
	List(ctx context.Context, tenantID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) error
}

type DashboardService struct {
	dashboard     DashboardStore
	notifications NotificationStore
	now           func() time.Time
}

func NewDashboardService(dashboard DashboardStore, notifications NotificationStore) *DashboardService {
	return &DashboardService{dashboard: dashboard, notifications: notifications, now: time.Now}
}

func (s *DashboardService) Summary(ctx context.Context, actor Actor) (*models.DashboardSummary, error) {
	summary, err := s.dashboard.Summary(ctx, actor.TenantID, s.now().UTC(), models.ReminderLeadTime)
	if err != nil {
		return nil, storeErr("dashboard summary", err)
	}
	return summary, nil
}

func (s *DashboardService) Notifications(ctx context.Context, actor Actor, unreadOnly bool, limit int) ([]models.Notification, error) {
	list, err := s.notifications.List(ctx, actor.TenantID, unreadOnly, limit)
	if err != nil {
		return nil, storeErr("list notifications", err)
	}
	return list, nil
}

func (s *DashboardService) MarkNotificationRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	return storeErr("mark notification read", s.notifications.MarkRead(ctx, actor.TenantID, id))
}
