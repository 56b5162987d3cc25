package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

func strPtr(s string) *string { return &s }

func TestTenantLifecycle(t *testing.T) {
	store := newMockTenantStore()
	svc := NewTenantService(store, zap.NewNop())
	ctx := context.Background()

	tenant, err := svc.Create(ctx, TenantRequest{Name: strPtr("  Northern Lights Care  ")})
	require.NoError(t, err)
	assert.Equal(t, "northern-lights-care", tenant.Slug)
	assert.Equal(t, models.TenantStatusActive, tenant.Status)

	_, err = svc.Create(ctx, TenantRequest{Name: strPtr("Northern Lights Care")})
	assert.ErrorIs(t, err, ErrConflict)

	suspended, err := svc.SetStatus(ctx, tenant.ID, models.TenantStatusSuspended)
	require.NoError(t, err)
	assert.False(t, suspended.IsActive())

	_, err = svc.SetStatus(ctx, tenant.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidInput)

	stats, err := svc.Stats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, stats.TenantID)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTenantCreateValidation(t *testing.T) {
	svc := NewTenantService(newMockTenantStore(), zap.NewNop())

	_, err := svc.Create(context.Background(), TenantRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), TenantRequest{Name: strPtr("!!!")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
