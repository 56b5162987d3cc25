package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type CareProfessionalStore interface {
	Create(ctx context.Context, c *models.CareProfessional) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CareProfessional, error)
	List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]models.CareProfessional, error)
	Update(ctx context.Context, c *models.CareProfessional) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Assign(ctx context.Context, tenantID, careProfessionalID, patientID uuid.UUID) error
	Unassign(ctx context.Context, tenantID, careProfessionalID, patientID uuid.UUID) error
}

// AssignedPatientLister lists the patients linked to a care professional.
type AssignedPatientLister interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error)
	ListByCareProfessional(ctx context.Context, tenantID, careProfessionalID uuid.UUID) ([]models.Patient, error)
}

type CareProfessionalService struct {
	professionals CareProfessionalStore
	patients      AssignedPatientLister
	log           *zap.Logger
}

func NewCareProfessionalService(professionals CareProfessionalStore, patients AssignedPatientLister, log *zap.Logger) *CareProfessionalService {
	return &CareProfessionalService{professionals: professionals, patients: patients, log: log}
}

type CareProfessionalInput struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	Role               *string `json:"role"`
	Email              *string `json:"email"`
	Phone              *string `json:"phone"`
	RegistrationNumber *string `json:"registration_number"`
	HourlyRatePence    *int64  `json:"hourly_rate_pence"`
	Active             *bool   `json:"active"`
}

func (in CareProfessionalInput) apply(c *models.CareProfessional) error {
	if in.FirstName != nil {
		c.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		c.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		c.Role = strings.ToLower(strings.TrimSpace(*in.Role))
	}
	if c.FirstName == "" || c.LastName == "" || c.Role == "" {
		return invalidf("first_name, last_name and role are required")
	}
	if in.HourlyRatePence != nil {
		if *in.HourlyRatePence < 0 {
			return invalidf("hourly_rate_pence cannot be negative")
		}
		c.HourlyRatePence = *in.HourlyRatePence
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	setOpt(&c.Email, in.Email)
	setOpt(&c.Phone, in.Phone)
	setOpt(&c.RegistrationNumber, in.RegistrationNumber)
	return nil
}

func (s *CareProfessionalService) Create(ctx context.Context, actor Actor, in CareProfessionalInput) (*models.CareProfessional, error) {
	c := &models.CareProfessional{TenantID: actor.TenantID, Active: true}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.professionals.Create(ctx, c); err != nil {
		return nil, storeErr("create care professional", err)
	}
	return c, nil
}

func (s *CareProfessionalService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.CareProfessional, error) {
	c, err := s.professionals.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get care professional", err)
	}
	if c == nil {
		return nil, notFound("care professional")
	}
	return c, nil
}

func (s *CareProfessionalService) List(ctx context.Context, actor Actor, activeOnly bool) ([]models.CareProfessional, error) {
	list, err := s.professionals.List(ctx, actor.TenantID, activeOnly)
	if err != nil {
		return nil, storeErr("list care professionals", err)
	}
	return list, nil
}

func (s *CareProfessionalService) Update(ctx context.Context, actor Actor, id uuid.UUID, in CareProfessionalInput) (*models.CareProfessional, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := s.professionals.Update(ctx, c); err != nil {
		return nil, storeErr("update care professional", err)
	}
	return c, nil
}

func (s *CareProfessionalService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete care professionals", ErrForbidden)
	}
	if err := s.professionals.Delete(ctx, actor.TenantID, id); err != nil {
		return storeErr("delete care professional", err)
	}
	return nil
}

// Patients lists the patients assigned to the care professional.
func (s *CareProfessionalService) Patients(ctx context.Context, actor Actor, id uuid.UUID) ([]models.Patient, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	patients, err := s.patients.ListByCareProfessional(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("list assigned patients", err)
	}
	return patients, nil
}

func (s *CareProfessionalService) Assign(ctx context.Context, actor Actor, id, patientID uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	p, err := s.patients.GetByID(ctx, actor.TenantID, patientID)
	if err != nil {
		return storeErr("get patient", err)
	}
	if p == nil {
		return notFound("patient")
	}
	if err := s.professionals.Assign(ctx, actor.TenantID, id, patientID); err != nil {
		return storeErr("assign patient", err)
	}
	s.log.Info("patient assigned",
		zap.String("care_professional_id", id.String()),
		zap.String("patient_id", patientID.String()))
	return nil
}

func (s *CareProfessionalService) Unassign(ctx context.Context, actor Actor, id, patientID uuid.UUID) error {
	if err := s.professionals.Unassign(ctx, actor.TenantID, id, patientID); err != nil {
		return storeErr("unassign patient", err)
	}
	return nil
}
