package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"complexcare/internal/models"
	"complexcare/internal/repositories"
)

// passTx runs fn directly; rollback is the repository's concern.
type passTx struct{ calls int }

func (t *passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type mockUserStore struct {
	users   map[uuid.UUID]*models.User
	touched []uuid.UUID
	created []*models.User
}

func newMockUserStore(users ...*models.User) *mockUserStore {
	m := &mockUserStore{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) Create(_ context.Context, u *models.User) error {
	u.Prepare()
	m.users[u.ID] = u
	m.created = append(m.created, u)
	return nil
}

func (m *mockUserStore) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return m.users[id], nil
}

func (m *mockUserStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.User, error) {
	var out []models.User
	for _, u := range m.users {
		if u.TenantID != nil && *u.TenantID == tenantID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserStore) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	m.touched = append(m.touched, id)
	return nil
}

func (m *mockUserStore) CountSuperadmins(context.Context) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.IsSuperadmin() {
			n++
		}
	}
	return n, nil
}

type mockTenantStore struct {
	tenants map[uuid.UUID]*models.Tenant
}

func newMockTenantStore(tenants ...*models.Tenant) *mockTenantStore {
	m := &mockTenantStore{tenants: map[uuid.UUID]*models.Tenant{}}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *mockTenantStore) Create(_ context.Context, t *models.Tenant) error {
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantStore) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	return m.tenants[id], nil
}

func (m *mockTenantStore) GetBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockTenantStore) List(context.Context) ([]models.Tenant, error) {
	out := make([]models.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTenantStore) Update(_ context.Context, t *models.Tenant) error {
	if _, ok := m.tenants[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockTenantStore) Stats(_ context.Context, id uuid.UUID) (*models.TenantStats, error) {
	return &models.TenantStats{TenantID: id, Patients: 3}, nil
}

type mockBlacklist struct {
	entries map[string]time.Duration
	err     error
}

func (m *mockBlacklist) Blacklist(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if m.entries == nil {
		m.entries = map[string]time.Duration{}
	}
	m.entries[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.entries[jti]
	return ok, nil
}

type mockPatients struct {
	GetByIDFn func(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error)
}

func (m *mockPatients) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Patient, error) {
	return m.GetByIDFn(ctx, tenantID, id)
}

// patientsIn returns a getter that knows only the given patient ids in tenant.
func patientsIn(tenant uuid.UUID, ids ...uuid.UUID) *mockPatients {
	return &mockPatients{GetByIDFn: func(_ context.Context, tenantID, id uuid.UUID) (*models.Patient, error) {
		if tenantID != tenant {
			return nil, nil
		}
		for _, known := range ids {
			if known == id {
				return &models.Patient{ID: id, TenantID: tenantID, FirstName: "Ada", LastName: "Lovelace"}, nil
			}
		}
		return nil, nil
	}}
}

type mockProfessionals struct {
	GetByIDFn func(ctx context.Context, tenantID, id uuid.UUID) (*models.CareProfessional, error)
}

func (m *mockProfessionals) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.CareProfessional, error) {
	return m.GetByIDFn(ctx, tenantID, id)
}

func professional(cp *models.CareProfessional) *mockProfessionals {
	return &mockProfessionals{GetByIDFn: func(_ context.Context, tenantID, id uuid.UUID) (*models.CareProfessional, error) {
		if cp == nil || cp.ID != id || cp.TenantID != tenantID {
			return nil, nil
		}
		return cp, nil
	}}
}

type mockAppointments struct {
	CreateFn          func(ctx context.Context, a *models.Appointment) error
	GetByIDFn         func(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error)
	ListFn            func(ctx context.Context, tenantID uuid.UUID, f models.AppointmentFilter) ([]models.Appointment, error)
	FindOverlappingFn func(ctx context.Context, tenantID, cpID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]models.Appointment, error)
	LockFn            func(ctx context.Context, tenantID, cpID uuid.UUID) error
	UpdateStatusFn    func(ctx context.Context, tenantID, id uuid.UUID, status string) error
}

func (m *mockAppointments) Create(ctx context.Context, a *models.Appointment) error {
	a.Prepare()
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, a)
}

func (m *mockAppointments) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Appointment, error) {
	return m.GetByIDFn(ctx, tenantID, id)
}

func (m *mockAppointments) List(ctx context.Context, tenantID uuid.UUID, f models.AppointmentFilter) ([]models.Appointment, error) {
	return m.ListFn(ctx, tenantID, f)
}

func (m *mockAppointments) LockProfessional(ctx context.Context, tenantID, cpID uuid.UUID) error {
	if m.LockFn == nil {
		return nil
	}
	return m.LockFn(ctx, tenantID, cpID)
}

func (m *mockAppointments) FindOverlapping(ctx context.Context, tenantID, cpID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]models.Appointment, error) {
	if m.FindOverlappingFn == nil {
		return nil, nil
	}
	return m.FindOverlappingFn(ctx, tenantID, cpID, start, end, excludeID)
}

func (m *mockAppointments) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error {
	if m.UpdateStatusFn == nil {
		return nil
	}
	return m.UpdateStatusFn(ctx, tenantID, id, status)
}

type mockCredentials struct {
	creds  map[uuid.UUID]*models.Credential
	audit  []models.CredentialAudit
	due    []models.Credential
	marked []uuid.UUID

	MarkReminderSentFn func(ctx context.Context, id uuid.UUID) error
}

func newMockCredentials() *mockCredentials {
	return &mockCredentials{creds: map[uuid.UUID]*models.Credential{}}
}

func (m *mockCredentials) Create(_ context.Context, c *models.Credential) error {
	c.Prepare()
	m.creds[c.ID] = c
	return nil
}

func (m *mockCredentials) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.Credential, error) {
	c, ok := m.creds[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	return c, nil
}

func (m *mockCredentials) Update(_ context.Context, c *models.Credential) error {
	existing, ok := m.creds[c.ID]
	if !ok || existing.TenantID != c.TenantID {
		return repositories.ErrNotFound
	}
	c.CareProfessionalID = existing.CareProfessionalID
	m.creds[c.ID] = c
	return nil
}

func (m *mockCredentials) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	c, ok := m.creds[id]
	if !ok || c.TenantID != tenantID {
		return repositories.ErrNotFound
	}
	delete(m.creds, id)
	return nil
}

func (m *mockCredentials) InsertAudit(_ context.Context, a *models.CredentialAudit) error {
	m.audit = append(m.audit, *a)
	return nil
}

func (m *mockCredentials) ListAudit(_ context.Context, _, credentialID uuid.UUID) ([]models.CredentialAudit, error) {
	var out []models.CredentialAudit
	for _, a := range m.audit {
		if a.CredentialID == credentialID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockCredentials) ListByProfessional(_ context.Context, tenantID, cpID uuid.UUID) ([]models.Credential, error) {
	var out []models.Credential
	for _, c := range m.creds {
		if c.TenantID == tenantID && c.CareProfessionalID == cpID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCredentials) ListExpiring(_ context.Context, tenantID uuid.UUID, until time.Time) ([]models.Credential, error) {
	var out []models.Credential
	for _, c := range m.creds {
		if c.TenantID == tenantID && c.ExpiresOn != nil && !c.ExpiresOn.After(until) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCredentials) DueReminders(context.Context, time.Time) ([]models.Credential, error) {
	return m.due, nil
}

func (m *mockCredentials) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	if m.MarkReminderSentFn != nil {
		if err := m.MarkReminderSentFn(ctx, id); err != nil {
			return err
		}
	}
	m.marked = append(m.marked, id)
	return nil
}

type mockNotifications struct {
	created []*models.Notification
}

func (m *mockNotifications) Create(_ context.Context, n *models.Notification) error {
	n.Prepare()
	m.created = append(m.created, n)
	return nil
}
