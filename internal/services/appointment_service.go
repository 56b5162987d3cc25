package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/utils"
)

type AppointmentStore interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, tenantID uuid.UUID, f models.AppointmentFilter) ([]models.Appointment, error)
	LockProfessional(ctx context.Context, tenantID, careProfessionalID uuid.UUID) error
	FindOverlapping(ctx context.Context, tenantID, careProfessionalID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

type CareProfessionalGetter interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CareProfessional, error)
}

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AppointmentService struct {
	appointments  AppointmentStore
	patients      PatientGetter
	professionals CareProfessionalGetter
	tx            Transactor
	log           *zap.Logger
}

func NewAppointmentService(appointments AppointmentStore, patients PatientGetter, professionals CareProfessionalGetter, tx Transactor, log *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appointments:  appointments,
		patients:      patients,
		professionals: professionals,
		tx:            tx,
		log:           log,
	}
}

type AppointmentInput struct {
	PatientID          uuid.UUID `json:"patient_id"`
	CareProfessionalID uuid.UUID `json:"care_professional_id"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
	Location           *string   `json:"location"`
	Notes              *string   `json:"notes"`
}

// Create books an appointment. The care professional must be free for the
// whole interval; cancelled appointments do not count.
func (s *AppointmentService) Create(ctx context.Context, actor Actor, in AppointmentInput) (*models.Appointment, error) {
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() {
		return nil, invalidf("starts_at and ends_at are required")
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, invalidf("ends_at must be after starts_at")
	}
	if err := requirePatient(ctx, s.patients, actor.TenantID, in.PatientID); err != nil {
		return nil, err
	}
	cp, err := s.professionals.GetByID(ctx, actor.TenantID, in.CareProfessionalID)
	if err != nil {
		return nil, storeErr("get care professional", err)
	}
	if cp == nil {
		return nil, notFound("care professional")
	}
	if !cp.Active {
		return nil, invalidf("care professional is inactive")
	}

	a := &models.Appointment{
		TenantID:           actor.TenantID,
		PatientID:          in.PatientID,
		CareProfessionalID: in.CareProfessionalID,
		StartsAt:           in.StartsAt.UTC(),
		EndsAt:             in.EndsAt.UTC(),
		Location:           in.Location,
		Notes:              in.Notes,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.appointments.LockProfessional(ctx, actor.TenantID, a.CareProfessionalID); err != nil {
			return storeErr("lock care professional", err)
		}
		clashes, err := s.appointments.FindOverlapping(ctx, actor.TenantID, a.CareProfessionalID, a.StartsAt, a.EndsAt, nil)
		if err != nil {
			return storeErr("check overlap", err)
		}
		if len(clashes) > 0 {
			return fmt.Errorf("%w: care professional already booked from %s to %s",
				ErrConflict, clashes[0].StartsAt.Format(time.RFC3339), clashes[0].EndsAt.Format(time.RFC3339))
		}
		return storeErr("create appointment", s.appointments.Create(ctx, a))
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get appointment", err)
	}
	if a == nil {
		return nil, notFound("appointment")
	}
	return a, nil
}

func (s *AppointmentService) List(ctx context.Context, actor Actor, f models.AppointmentFilter) ([]models.Appointment, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, invalidf("to must not be before from")
	}
	if f.Status != "" && !utils.Contains(models.AppointmentStatuses, f.Status) {
		return nil, invalidf("unknown status %q", f.Status)
	}
	list, err := s.appointments.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, storeErr("list appointments", err)
	}
	return list, nil
}

// UpdateStatus moves an appointment to status. Reinstating a cancelled
// appointment re-checks the professional's availability.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*models.Appointment, error) {
	if !utils.Contains(models.AppointmentStatuses, status) {
		return nil, invalidf("unknown status %q", status)
	}

	var a *models.Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.Get(ctx, actor, id)
		if err != nil {
			return err
		}
		if a.Status == models.AppointmentCancelled && status != models.AppointmentCancelled {
			if err := s.appointments.LockProfessional(ctx, actor.TenantID, a.CareProfessionalID); err != nil {
				return storeErr("lock care professional", err)
			}
			clashes, err := s.appointments.FindOverlapping(ctx, actor.TenantID, a.CareProfessionalID, a.StartsAt, a.EndsAt, &a.ID)
			if err != nil {
				return storeErr("check overlap", err)
			}
			if len(clashes) > 0 {
				return fmt.Errorf("%w: slot has been rebooked", ErrConflict)
			}
		}
		if err := s.appointments.UpdateStatus(ctx, actor.TenantID, id, status); err != nil {
			return storeErr("update appointment", err)
		}
		a.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	return s.UpdateStatus(ctx, actor, id, models.AppointmentCancelled)
}
