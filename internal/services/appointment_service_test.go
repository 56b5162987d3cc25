package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type appointmentFixture struct {
	svc     *AppointmentService
	store   *mockAppointments
	tx      *passTx
	actor   Actor
	patient uuid.UUID
	cp      *models.CareProfessional
	booked  []models.Appointment
}

func newAppointmentFixture() *appointmentFixture {
	tenant := uuid.New()
	f := &appointmentFixture{
		tx:      &passTx{},
		actor:   Actor{UserID: uuid.New(), TenantID: tenant, Role: models.RoleStaff},
		patient: uuid.New(),
		cp:      &models.CareProfessional{ID: uuid.New(), TenantID: tenant, FirstName: "Flo", LastName: "N", Active: true},
	}
	f.store = &mockAppointments{
		CreateFn: func(_ context.Context, a *models.Appointment) error {
			f.booked = append(f.booked, *a)
			return nil
		},
		FindOverlappingFn: func(_ context.Context, _, cpID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]models.Appointment, error) {
			var out []models.Appointment
			for _, a := range f.booked {
				if a.CareProfessionalID != cpID || a.Status == models.AppointmentCancelled {
					continue
				}
				if exclude != nil && a.ID == *exclude {
					continue
				}
				if a.Overlaps(start, end) {
					out = append(out, a)
				}
			}
			return out, nil
		},
		GetByIDFn: func(_ context.Context, _, id uuid.UUID) (*models.Appointment, error) {
			for i := range f.booked {
				if f.booked[i].ID == id {
					a := f.booked[i]
					return &a, nil
				}
			}
			return nil, nil
		},
		UpdateStatusFn: func(_ context.Context, _, id uuid.UUID, status string) error {
			for i := range f.booked {
				if f.booked[i].ID == id {
					f.booked[i].Status = status
				}
			}
			return nil
		},
	}
	f.svc = NewAppointmentService(f.store, patientsIn(tenant, f.patient), professional(f.cp), f.tx, zap.NewNop())
	return f
}

func (f *appointmentFixture) input(start time.Time, d time.Duration) AppointmentInput {
	return AppointmentInput{PatientID: f.patient, CareProfessionalID: f.cp.ID, StartsAt: start, EndsAt: start.Add(d)}
}

func TestCreateAppointmentRejectsOverlap(t *testing.T) {
	f := newAppointmentFixture()
	ctx := context.Background()
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first, err := f.svc.Create(ctx, f.actor, f.input(nine, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentScheduled, first.Status)

	_, err = f.svc.Create(ctx, f.actor, f.input(nine.Add(30*time.Minute), time.Hour))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Create(ctx, f.actor, f.input(nine.Add(time.Hour), time.Hour))
	assert.NoError(t, err, "back-to-back appointments do not overlap")
	assert.Len(t, f.booked, 2)
}

func TestAppointmentWritesLockProfessionalFirst(t *testing.T) {
	f := newAppointmentFixture()
	ctx := context.Background()
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	var calls []string
	f.store.LockFn = func(_ context.Context, tenantID, cpID uuid.UUID) error {
		assert.Equal(t, f.actor.TenantID, tenantID)
		assert.Equal(t, f.cp.ID, cpID)
		calls = append(calls, "lock")
		return nil
	}
	overlap := f.store.FindOverlappingFn
	f.store.FindOverlappingFn = func(ctx context.Context, tenantID, cpID uuid.UUID, start, end time.Time, exclude *uuid.UUID) ([]models.Appointment, error) {
		calls = append(calls, "overlap")
		return overlap(ctx, tenantID, cpID, start, end, exclude)
	}

	first, err := f.svc.Create(ctx, f.actor, f.input(nine, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "overlap"}, calls)

	_, err = f.svc.Cancel(ctx, f.actor, first.ID)
	require.NoError(t, err)
	assert.Len(t, calls, 2, "cancelling needs no lock")

	_, err = f.svc.UpdateStatus(ctx, f.actor, first.ID, models.AppointmentScheduled)
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "overlap", "lock", "overlap"}, calls)
}

func TestCancelledAppointmentFreesSlot(t *testing.T) {
	f := newAppointmentFixture()
	ctx := context.Background()
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first, err := f.svc.Create(ctx, f.actor, f.input(nine, time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, f.actor, first.ID)
	require.NoError(t, err)

	second, err := f.svc.Create(ctx, f.actor, f.input(nine, time.Hour))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.actor, first.ID, models.AppointmentScheduled)
	assert.ErrorIs(t, err, ErrConflict, "reinstating must not double-book")

	_, err = f.svc.UpdateStatus(ctx, f.actor, second.ID, models.AppointmentCompleted)
	assert.NoError(t, err)
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newAppointmentFixture()
	ctx := context.Background()
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(ctx, f.actor, f.input(nine, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(ctx, f.actor, f.input(nine, -time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInput)

	in := f.input(nine, time.Hour)
	in.PatientID = uuid.New()
	_, err = f.svc.Create(ctx, f.actor, in)
	assert.ErrorIs(t, err, ErrNotFound)

	other := Actor{TenantID: uuid.New()}
	_, err = f.svc.Create(ctx, other, f.input(nine, time.Hour))
	assert.ErrorIs(t, err, ErrNotFound, "patients of another tenant are invisible")

	f.cp.Active = false
	_, err = f.svc.Create(ctx, f.actor, f.input(nine, time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListAppointmentsRejectsInvertedRange(t *testing.T) {
	f := newAppointmentFixture()
	from := time.Now()
	to := from.Add(-time.Hour)

	_, err := f.svc.List(context.Background(), f.actor, models.AppointmentFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
