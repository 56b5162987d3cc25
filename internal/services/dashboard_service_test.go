package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexcare/internal/models"
	"complexcare/internal/repositories"
)

type fakeDashboard struct {
	window time.Duration
	now    time.Time
	tenant uuid.UUID
}

func (f *fakeDashboard) Summary(_ context.Context, tenantID uuid.UUID, now time.Time, window time.Duration) (*models.DashboardSummary, error) {
	f.tenant, f.now, f.window = tenantID, now, window
	return &models.DashboardSummary{Patients: 7, UnpaidInvoiceTotalPence: 12345}, nil
}

type fakeNotificationList struct {
	read []uuid.UUID
}

func (f *fakeNotificationList) List(context.Context, uuid.UUID, bool, int) ([]models.Notification, error) {
	return []models.Notification{{Title: "DBS credential expiring"}}, nil
}

func (f *fakeNotificationList) MarkRead(_ context.Context, _, id uuid.UUID) error {
	if len(f.read) > 0 && f.read[0] == id {
		return repositories.ErrNotFound
	}
	f.read = append(f.read, id)
	return nil
}

func TestDashboardSummary(t *testing.T) {
	dash := &fakeDashboard{}
	notes := &fakeNotificationList{}
	svc := NewDashboardService(dash, notes)
	fixed := time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	actor := Actor{TenantID: uuid.New()}
	ctx := context.Background()

	s, err := svc.Summary(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Patients)
	assert.Equal(t, actor.TenantID, dash.tenant)
	assert.Equal(t, fixed, dash.now)
	assert.Equal(t, 30*24*time.Hour, dash.window)

	list, err := svc.Notifications(ctx, actor, true, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	id := uuid.New()
	require.NoError(t, svc.MarkNotificationRead(ctx, actor, id))
	assert.ErrorIs(t, svc.MarkNotificationRead(ctx, actor, id), ErrNotFound)
}
