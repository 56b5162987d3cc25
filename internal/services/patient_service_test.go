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

type mockPatientStore struct {
	CreateFn func(ctx context.Context, p *models.Patient) error
	ListFn   func(ctx context.Context, tenantID uuid.UUID, f models.PatientFilter) ([]models.Patient, error)
	DeleteFn func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockPatientStore) Create(ctx context.Context, p *models.Patient) error {
	p.Prepare()
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, p)
}

func (m *mockPatientStore) GetByID(context.Context, uuid.UUID, uuid.UUID) (*models.Patient, error) {
	return nil, nil
}

func (m *mockPatientStore) List(ctx context.Context, tenantID uuid.UUID, f models.PatientFilter) ([]models.Patient, error) {
	return m.ListFn(ctx, tenantID, f)
}

func (m *mockPatientStore) Update(context.Context, *models.Patient) error { return nil }

func (m *mockPatientStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, tenantID, id)
}

func TestCreatePatient(t *testing.T) {
	tenant := uuid.New()
	svc := NewPatientService(&mockPatientStore{}, zap.NewNop())
	actor := Actor{UserID: uuid.New(), TenantID: tenant, Role: models.RoleClinician}

	p, err := svc.Create(context.Background(), actor, PatientInput{
		FirstName:      strPtr("Mary"),
		LastName:       strPtr("Seacole"),
		NHSNumber:      strPtr("943 476 5919"),
		DateOfBirth:    strPtr("1945-11-23"),
		GPPracticeCode: strPtr("a81001"),
	})
	require.NoError(t, err)
	assert.Equal(t, tenant, p.TenantID)
	require.NotNil(t, p.NHSNumber)
	assert.Equal(t, "9434765919", *p.NHSNumber)
	require.NotNil(t, p.GPPracticeCode)
	assert.Equal(t, "A81001", *p.GPPracticeCode)
	require.NotNil(t, p.DateOfBirth)
	assert.Equal(t, 1945, p.DateOfBirth.Year())
}

func TestCreatePatientValidation(t *testing.T) {
	svc := NewPatientService(&mockPatientStore{}, zap.NewNop())
	actor := Actor{TenantID: uuid.New(), Role: models.RoleStaff}

	tests := []struct {
		name string
		in   PatientInput
	}{
		{"missing name", PatientInput{FirstName: strPtr("Mary")}},
		{"bad check digit", PatientInput{FirstName: strPtr("M"), LastName: strPtr("S"), NHSNumber: strPtr("9434765918")}},
		{"bad date", PatientInput{FirstName: strPtr("M"), LastName: strPtr("S"), DateOfBirth: strPtr("23/11/1945")}},
		{"bad ods code", PatientInput{FirstName: strPtr("M"), LastName: strPtr("S"), GPPracticeCode: strPtr("12345")}},
		{"bad status", PatientInput{FirstName: strPtr("M"), LastName: strPtr("S"), Status: strPtr("archived")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), actor, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestListPatientsClampsPaging(t *testing.T) {
	var got models.PatientFilter
	store := &mockPatientStore{ListFn: func(_ context.Context, _ uuid.UUID, f models.PatientFilter) ([]models.Patient, error) {
		got = f
		return nil, nil
	}}
	svc := NewPatientService(store, zap.NewNop())
	actor := Actor{TenantID: uuid.New()}

	_, err := svc.List(context.Background(), actor, models.PatientFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, got.Limit)

	_, err = svc.List(context.Background(), actor, models.PatientFilter{Limit: 5000, Offset: -3, Search: " 943 476 5919 "})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, got.Limit)
	assert.Zero(t, got.Offset)
	assert.Equal(t, "9434765919", got.Search)
}

func TestDeletePatientRequiresAdmin(t *testing.T) {
	svc := NewPatientService(&mockPatientStore{}, zap.NewNop())

	err := svc.Delete(context.Background(), Actor{TenantID: uuid.New(), Role: models.RoleClinician}, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(context.Background(), Actor{TenantID: uuid.New(), Role: models.RoleAdmin}, uuid.New())
	assert.NoError(t, err)
}
