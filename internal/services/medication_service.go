package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type MedicationStore interface {
	Create(ctx context.Context, m *models.PatientMedication) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PatientMedication, error)
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]models.PatientMedication, error)
	Stop(ctx context.Context, tenantID, id uuid.UUID, endDate time.Time) (*models.PatientMedication, error)
}

// DMDLookup resolves a dm+d code to its product details.
type DMDLookup interface {
	Get(ctx context.Context, code string) (*models.DMDDetail, error)
}

type MedicationService struct {
	meds     MedicationStore
	patients PatientGetter
	dmd      DMDLookup
	log      *zap.Logger
	now      func() time.Time
}

func NewMedicationService(meds MedicationStore, patients PatientGetter, dmd DMDLookup, log *zap.Logger) *MedicationService {
	return &MedicationService{meds: meds, patients: patients, dmd: dmd, log: log, now: time.Now}
}

type MedicationInput struct {
	DMDCode    *string `json:"dmd_code"`
	Name       string  `json:"name"`
	Dose       *string `json:"dose"`
	Route      *string `json:"route"`
	Frequency  *string `json:"frequency"`
	StartDate  *string `json:"start_date"`
	Prescriber *string `json:"prescriber"`
}

// Add records a medication for the patient. When only a dm+d code is given
// the name is taken from the dm+d entry.
func (s *MedicationService) Add(ctx context.Context, actor Actor, patientID uuid.UUID, in MedicationInput) (*models.PatientMedication, error) {
	if err := requirePatient(ctx, s.patients, actor.TenantID, patientID); err != nil {
		return nil, err
	}

	m := &models.PatientMedication{
		TenantID:   actor.TenantID,
		PatientID:  patientID,
		Name:       strings.TrimSpace(in.Name),
		Dose:       in.Dose,
		Route:      in.Route,
		Frequency:  in.Frequency,
		Prescriber: in.Prescriber,
	}
	setOpt(&m.DMDCode, in.DMDCode)

	if m.Name == "" {
		if m.DMDCode == nil {
			return nil, invalidf("name or dmd_code is required")
		}
		detail, err := s.dmd.Get(ctx, *m.DMDCode)
		if err != nil {
			return nil, err
		}
		m.Name = detail.Name
	}

	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	if start != nil {
		m.StartDate = *start
	}

	if err := s.meds.Create(ctx, m); err != nil {
		return nil, storeErr("add medication", err)
	}
	return m, nil
}

func (s *MedicationService) ListByPatient(ctx context.Context, actor Actor, patientID uuid.UUID) ([]models.PatientMedication, error) {
	if err := requirePatient(ctx, s.patients, actor.TenantID, patientID); err != nil {
		return nil, err
	}
	meds, err := s.meds.ListByPatient(ctx, actor.TenantID, patientID)
	if err != nil {
		return nil, storeErr("list medications", err)
	}
	return meds, nil
}

// Stop ends a medication today, or on endDate when given. An explicit end
// date before the start date is rejected; a course that has not started yet
// ends on its start date.
func (s *MedicationService) Stop(ctx context.Context, actor Actor, id uuid.UUID, endDate *string) (*models.PatientMedication, error) {
	end, err := parseDate("end_date", endDate)
	if err != nil {
		return nil, err
	}
	current, err := s.meds.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get medication", err)
	}
	if current == nil {
		return nil, notFound("medication")
	}
	start := startOfDay(current.StartDate)
	switch {
	case end != nil && end.Before(start):
		return nil, invalidf("end_date must not be before start_date")
	case end == nil:
		today := startOfDay(s.now())
		if today.Before(start) {
			today = start
		}
		end = &today
	}
	m, err := s.meds.Stop(ctx, actor.TenantID, id, *end)
	if err != nil {
		return nil, storeErr("stop medication", err)
	}
	return m, nil
}
