package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/utils"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var patientStatuses = []string{models.PatientStatusActive, models.PatientStatusInactive, models.PatientStatusDischarged}

type PatientStore interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error)
	List(ctx context.Context, tenantID uuid.UUID, f models.PatientFilter) ([]models.Patient, error)
	Update(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type PatientService struct {
	patients PatientStore
	log      *zap.Logger
}

func NewPatientService(patients PatientStore, log *zap.Logger) *PatientService {
	return &PatientService{patients: patients, log: log}
}

// PatientInput carries create and update fields; nil fields are left alone
// on update.
type PatientInput struct {
	NHSNumber      *string `json:"nhs_number"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	DateOfBirth    *string `json:"date_of_birth"`
	Gender         *string `json:"gender"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Address        *string `json:"address"`
	GPPracticeCode *string `json:"gp_practice_code"`
	Status         *string `json:"status"`
}

func (in PatientInput) apply(p *models.Patient) error {
	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	if p.FirstName == "" || p.LastName == "" {
		return invalidf("first_name and last_name are required")
	}
	if in.NHSNumber != nil {
		if *in.NHSNumber == "" {
			p.NHSNumber = nil
		} else {
			if !models.ValidNHSNumber(*in.NHSNumber) {
				return invalidf("nhs_number %q fails the check digit", *in.NHSNumber)
			}
			n := models.NormalizeNHSNumber(*in.NHSNumber)
			p.NHSNumber = &n
		}
	}
	if in.DateOfBirth != nil {
		dob, err := parseDate("date_of_birth", in.DateOfBirth)
		if err != nil {
			return err
		}
		p.DateOfBirth = dob
	}
	if in.GPPracticeCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.GPPracticeCode))
		if code != "" && !models.ValidODSCode(code) {
			return invalidf("gp_practice_code %q is not an ODS code", *in.GPPracticeCode)
		}
		setOpt(&p.GPPracticeCode, &code)
	}
	if in.Status != nil {
		if !utils.Contains(patientStatuses, *in.Status) {
			return invalidf("unknown status %q", *in.Status)
		}
		p.Status = *in.Status
	}
	setOpt(&p.Gender, in.Gender)
	setOpt(&p.Phone, in.Phone)
	setOpt(&p.Email, in.Email)
	setOpt(&p.Address, in.Address)
	return nil
}

func setOpt(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

func (s *PatientService) Create(ctx context.Context, actor Actor, in PatientInput) (*models.Patient, error) {
	p := &models.Patient{TenantID: actor.TenantID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, storeErr("create patient", err)
	}
	s.log.Info("patient created", zap.String("tenant_id", actor.TenantID.String()), zap.String("patient_id", p.ID.String()))
	return p, nil
}

func (s *PatientService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Patient, error) {
	p, err := s.patients.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get patient", err)
	}
	if p == nil {
		return nil, notFound("patient")
	}
	return p, nil
}

// List pages through the tenant's patients. Limit defaults to 50 and is
// capped at 200.
func (s *PatientService) List(ctx context.Context, actor Actor, f models.PatientFilter) ([]models.Patient, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && !utils.Contains(patientStatuses, f.Status) {
		return nil, invalidf("unknown status %q", f.Status)
	}
	f.Search = strings.TrimSpace(f.Search)
	if models.ValidNHSNumber(f.Search) {
		f.Search = models.NormalizeNHSNumber(f.Search)
	}

	patients, err := s.patients.List(ctx, actor.TenantID, f)
	if err != nil {
		return nil, storeErr("list patients", err)
	}
	return patients, nil
}

func (s *PatientService) Update(ctx context.Context, actor Actor, id uuid.UUID, in PatientInput) (*models.Patient, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, storeErr("update patient", err)
	}
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete patients", ErrForbidden)
	}
	if err := s.patients.Delete(ctx, actor.TenantID, id); err != nil {
		return storeErr("delete patient", err)
	}
	s.log.Info("patient deleted", zap.String("tenant_id", actor.TenantID.String()), zap.String("patient_id", id.String()))
	return nil
}
