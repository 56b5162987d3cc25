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

type ClinicalNoteStore interface {
	Create(ctx context.Context, n *models.ClinicalNote) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ClinicalNote, error)
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]models.ClinicalNote, error)
	Update(ctx context.Context, n *models.ClinicalNote) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type PatientGetter interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error)
}

type ClinicalNoteService struct {
	notes    ClinicalNoteStore
	patients PatientGetter
	log      *zap.Logger
}

func NewClinicalNoteService(notes ClinicalNoteStore, patients PatientGetter, log *zap.Logger) *ClinicalNoteService {
	return &ClinicalNoteService{notes: notes, patients: patients, log: log}
}

type ClinicalNoteInput struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

func (in ClinicalNoteInput) validate() error {
	if !utils.Contains(models.NoteCategories, in.Category) {
		return invalidf("category must be one of %s", strings.Join(models.NoteCategories, ", "))
	}
	if strings.TrimSpace(in.Content) == "" {
		return invalidf("content is required")
	}
	return nil
}

func requirePatient(ctx context.Context, patients PatientGetter, tenantID, id uuid.UUID) error {
	p, err := patients.GetByID(ctx, tenantID, id)
	if err != nil {
		return storeErr("get patient", err)
	}
	if p == nil {
		return notFound("patient")
	}
	return nil
}

func (s *ClinicalNoteService) Create(ctx context.Context, actor Actor, patientID uuid.UUID, in ClinicalNoteInput) (*models.ClinicalNote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := requirePatient(ctx, s.patients, actor.TenantID, patientID); err != nil {
		return nil, err
	}
	n := &models.ClinicalNote{
		TenantID:  actor.TenantID,
		PatientID: patientID,
		AuthorID:  actor.UserID,
		Category:  in.Category,
		Content:   strings.TrimSpace(in.Content),
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, storeErr("create clinical note", err)
	}
	return n, nil
}

// ListByPatient returns notes newest first.
func (s *ClinicalNoteService) ListByPatient(ctx context.Context, actor Actor, patientID uuid.UUID) ([]models.ClinicalNote, error) {
	if err := requirePatient(ctx, s.patients, actor.TenantID, patientID); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByPatient(ctx, actor.TenantID, patientID)
	if err != nil {
		return nil, storeErr("list clinical notes", err)
	}
	return notes, nil
}

func (s *ClinicalNoteService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.ClinicalNote, error) {
	n, err := s.notes.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		return nil, storeErr("get clinical note", err)
	}
	if n == nil {
		return nil, notFound("clinical note")
	}
	return n, nil
}

// Update is allowed for the note's author and for admins.
func (s *ClinicalNoteService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ClinicalNoteInput) (*models.ClinicalNote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if n.AuthorID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only the author or an admin can edit this note", ErrForbidden)
	}
	n.Category = in.Category
	n.Content = strings.TrimSpace(in.Content)
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, storeErr("update clinical note", err)
	}
	return n, nil
}

func (s *ClinicalNoteService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete notes", ErrForbidden)
	}
	if err := s.notes.Delete(ctx, actor.TenantID, id); err != nil {
		return storeErr("delete clinical note", err)
	}
	s.log.Info("clinical note deleted", zap.String("note_id", id.String()), zap.String("by", actor.UserID.String()))
	return nil
}
