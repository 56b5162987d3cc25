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
	"complexcare/internal/repositories"
)

type mockNotes struct {
	notes   map[uuid.UUID]*models.ClinicalNote
	clock   time.Time
	deleted []uuid.UUID
}

func newMockNotes() *mockNotes {
	return &mockNotes{notes: map[uuid.UUID]*models.ClinicalNote{}, clock: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (m *mockNotes) Create(_ context.Context, n *models.ClinicalNote) error {
	n.ID = uuid.New()
	m.clock = m.clock.Add(time.Minute)
	n.CreatedAt, n.UpdatedAt = m.clock, m.clock
	m.notes[n.ID] = n
	return nil
}

func (m *mockNotes) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.ClinicalNote, error) {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (m *mockNotes) ListByPatient(_ context.Context, tenantID, patientID uuid.UUID) ([]models.ClinicalNote, error) {
	var out []models.ClinicalNote
	for _, n := range m.notes {
		if n.TenantID == tenantID && n.PatientID == patientID {
			out = append(out, *n)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m *mockNotes) Update(_ context.Context, n *models.ClinicalNote) error {
	if _, ok := m.notes[n.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *n
	m.notes[n.ID] = &copied
	return nil
}

func (m *mockNotes) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	delete(m.notes, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type noteFixture struct {
	svc     *ClinicalNoteService
	store   *mockNotes
	tenant  uuid.UUID
	patient uuid.UUID
	author  Actor
	other   Actor
	admin   Actor
}

func newNoteFixture() *noteFixture {
	tenant, patient := uuid.New(), uuid.New()
	store := newMockNotes()
	return &noteFixture{
		svc:     NewClinicalNoteService(store, patientsIn(tenant, patient), zap.NewNop()),
		store:   store,
		tenant:  tenant,
		patient: patient,
		author:  Actor{UserID: uuid.New(), TenantID: tenant, Role: models.RoleClinician},
		other:   Actor{UserID: uuid.New(), TenantID: tenant, Role: models.RoleClinician},
		admin:   Actor{UserID: uuid.New(), TenantID: tenant, Role: models.RoleAdmin},
	}
}

func TestCreateClinicalNote(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()

	n, err := f.svc.Create(ctx, f.author, f.patient, ClinicalNoteInput{Category: "progress", Content: "  Mobilising with frame.  "})
	require.NoError(t, err)
	assert.Equal(t, f.author.UserID, n.AuthorID)
	assert.Equal(t, f.tenant, n.TenantID)
	assert.Equal(t, "Mobilising with frame.", n.Content)

	tests := []struct {
		name    string
		patient uuid.UUID
		in      ClinicalNoteInput
		want    error
	}{
		{"unknown category", f.patient, ClinicalNoteInput{Category: "gossip", Content: "x"}, ErrInvalidInput},
		{"blank content", f.patient, ClinicalNoteInput{Category: "incident", Content: "   "}, ErrInvalidInput},
		{"patient outside tenant", uuid.New(), ClinicalNoteInput{Category: "incident", Content: "fall"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.author, tt.patient, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Len(t, f.store.notes, 1)
}

func TestListClinicalNotesNewestFirst(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()

	for _, content := range []string{"admission", "day two", "handover to night"} {
		_, err := f.svc.Create(ctx, f.author, f.patient, ClinicalNoteInput{Category: "progress", Content: content})
		require.NoError(t, err)
	}

	notes, err := f.svc.ListByPatient(ctx, f.other, f.patient)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "handover to night", notes[0].Content)
	assert.Equal(t, "admission", notes[2].Content)

	_, err = f.svc.ListByPatient(ctx, Actor{TenantID: uuid.New()}, f.patient)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateClinicalNoteAuthorOrAdmin(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()

	n, err := f.svc.Create(ctx, f.author, f.patient, ClinicalNoteInput{Category: "assessment", Content: "initial"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.other, n.ID, ClinicalNoteInput{Category: "assessment", Content: "rewritten"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "initial", f.store.notes[n.ID].Content)

	updated, err := f.svc.Update(ctx, f.author, n.ID, ClinicalNoteInput{Category: "assessment", Content: "revised"})
	require.NoError(t, err)
	assert.Equal(t, "revised", updated.Content)

	updated, err = f.svc.Update(ctx, f.admin, n.ID, ClinicalNoteInput{Category: "handover", Content: "corrected"})
	require.NoError(t, err)
	assert.Equal(t, "handover", updated.Category)
	assert.Equal(t, f.author.UserID, updated.AuthorID)

	_, err = f.svc.Update(ctx, Actor{UserID: f.author.UserID, TenantID: uuid.New(), Role: models.RoleClinician}, n.ID,
		ClinicalNoteInput{Category: "assessment", Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteClinicalNoteAdminOnly(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()

	n, err := f.svc.Create(ctx, f.author, f.patient, ClinicalNoteInput{Category: "incident", Content: "fall in bathroom"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.author, n.ID), ErrForbidden)
	assert.Empty(t, f.store.deleted)

	require.NoError(t, f.svc.Delete(ctx, f.admin, n.ID))
	assert.Equal(t, []uuid.UUID{n.ID}, f.store.deleted)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, n.ID), ErrNotFound)
}
