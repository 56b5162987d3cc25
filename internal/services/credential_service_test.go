package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type credentialFixture struct {
	svc   *CredentialService
	store *mockCredentials
	notes *mockNotifications
	tx    *passTx
	actor Actor
	cp    *models.CareProfessional
}

func newCredentialFixture(now time.Time) *credentialFixture {
	tenant := uuid.New()
	f := &credentialFixture{
		store: newMockCredentials(),
		notes: &mockNotifications{},
		tx:    &passTx{},
		actor: Actor{UserID: uuid.New(), TenantID: tenant, Role: models.RoleAdmin},
		cp:    &models.CareProfessional{ID: uuid.New(), TenantID: tenant, FirstName: "Edith", LastName: "Cavell", Active: true},
	}
	f.svc = NewCredentialService(f.store, professional(f.cp), f.notes, f.tx, zap.NewNop())
	f.svc.now = func() time.Time { return now }
	return f
}

func TestCreateCredentialComputesReminderAndAudits(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	f := newCredentialFixture(now)

	c, err := f.svc.Create(context.Background(), f.actor, f.cp.ID, CredentialInput{
		Type:      "DBS",
		IssuedOn:  strPtr("2023-06-01"),
		ExpiresOn: strPtr("2026-05-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "dbs", c.Type)
	require.NotNil(t, c.ReminderDate)
	assert.Equal(t, "2026-04-20", c.ReminderDate.Format(dateLayout))
	assert.Equal(t, models.CredentialExpiring, c.Status)

	require.Len(t, f.store.audit, 1)
	assert.Equal(t, "create", f.store.audit[0].Action)
	assert.Equal(t, c.ID, f.store.audit[0].CredentialID)
	assert.Equal(t, 1, f.tx.calls)
}

func TestCredentialValidation(t *testing.T) {
	f := newCredentialFixture(time.Now())
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.actor, f.cp.ID, CredentialInput{Type: "passport"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(ctx, f.actor, f.cp.ID, CredentialInput{Type: "dbs", IssuedOn: strPtr("2026-01-01"), ExpiresOn: strPtr("2025-01-01")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(ctx, f.actor, uuid.New(), CredentialInput{Type: "dbs"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.store.audit)
}

func TestUpdateAndDeleteCredentialAreAudited(t *testing.T) {
	f := newCredentialFixture(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.actor, f.cp.ID, CredentialInput{Type: "training"})
	require.NoError(t, err)
	assert.Equal(t, models.CredentialNoExpiry, c.Status)
	assert.Nil(t, c.ReminderDate)

	updated, err := f.svc.Update(ctx, f.actor, c.ID, CredentialInput{Type: "training", ExpiresOn: strPtr("2027-01-01")})
	require.NoError(t, err)
	assert.Equal(t, models.CredentialValid, updated.Status)
	assert.Equal(t, "2026-12-02", updated.ReminderDate.Format(dateLayout))

	require.NoError(t, f.svc.Delete(ctx, f.actor, c.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.actor, c.ID), ErrNotFound)

	history, err := f.svc.History(ctx, f.actor, c.ID)
	require.NoError(t, err)
	var actions []string
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{"create", "update", "delete"}, actions)
}

func TestListExpiringWindow(t *testing.T) {
	f := newCredentialFixture(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.actor, f.cp.ID, CredentialInput{Type: "dbs", ExpiresOn: strPtr("2026-01-20")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.actor, f.cp.ID, CredentialInput{Type: "nmc_pin", ExpiresOn: strPtr("2026-06-01")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.actor, f.cp.ID, CredentialInput{Type: "training", ExpiresOn: strPtr("2027-03-01")})
	require.NoError(t, err)

	list, err := f.svc.ListExpiring(ctx, f.actor, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "dbs", list[0].Type)
	assert.Equal(t, models.CredentialExpiring, list[0].Status)

	list, err = f.svc.ListExpiring(ctx, f.actor, 400)
	require.NoError(t, err)
	assert.Len(t, list, 2, "a window beyond a year is capped at a year")
}

func TestSendDueReminders(t *testing.T) {
	f := newCredentialFixture(time.Date(2026, 4, 25, 8, 0, 0, 0, time.UTC))
	expires := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	failing := uuid.New()
	f.store.due = []models.Credential{
		{ID: uuid.New(), TenantID: f.actor.TenantID, CareProfessionalID: f.cp.ID, Type: "right_to_work", ExpiresOn: &expires},
		{ID: failing, TenantID: f.actor.TenantID, CareProfessionalID: uuid.New(), Type: "dbs", ExpiresOn: &expires},
	}
	f.store.MarkReminderSentFn = func(_ context.Context, id uuid.UUID) error {
		if id == failing {
			return errors.New("deadlock detected")
		}
		return nil
	}

	sent, err := f.svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []uuid.UUID{f.store.due[0].ID}, f.store.marked)
	assert.Equal(t, 2, f.tx.calls, "each reminder runs in its own transaction")

	require.NotEmpty(t, f.notes.created)
	n := f.notes.created[0]
	assert.Equal(t, models.NotificationCredentialExpiry, n.Kind)
	assert.Equal(t, f.actor.TenantID, n.TenantID)
	assert.Contains(t, n.Body, "Edith Cavell")
	assert.Contains(t, n.Body, "2026-05-20")
	assert.Contains(t, n.Title, "RIGHT TO WORK")
}
