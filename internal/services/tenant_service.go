package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
)

type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Stats(ctx context.Context, id uuid.UUID) (*models.TenantStats, error)
}

type TenantService struct {
	tenants TenantStore
	log     *zap.Logger
}

func NewTenantService(tenants TenantStore, log *zap.Logger) *TenantService {
	return &TenantService{tenants: tenants, log: log}
}

type TenantRequest struct {
	Name         *string `json:"name"`
	Slug         *string `json:"slug"`
	Status       *string `json:"status"`
	ContactEmail *string `json:"contact_email"`
}

func validTenantStatus(s string) bool {
	return s == models.TenantStatusActive || s == models.TenantStatusSuspended
}

func (s *TenantService) Create(ctx context.Context, req TenantRequest) (*models.Tenant, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, invalidf("name is required")
	}
	t := &models.Tenant{Name: *req.Name, ContactEmail: req.ContactEmail}
	if req.Slug != nil {
		t.Slug = models.Slugify(*req.Slug)
	}
	if req.Status != nil {
		if !validTenantStatus(*req.Status) {
			return nil, invalidf("unknown status %q", *req.Status)
		}
		t.Status = *req.Status
	}
	t.Prepare()
	if t.Slug == "" {
		return nil, invalidf("name must contain letters or digits")
	}

	existing, err := s.tenants.GetBySlug(ctx, t.Slug)
	if err != nil {
		return nil, storeErr("get tenant", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: slug %q is taken", ErrConflict, t.Slug)
	}

	if err := s.tenants.Create(ctx, t); err != nil {
		return nil, storeErr("create tenant", err)
	}
	s.log.Info("tenant created", zap.String("tenant_id", t.ID.String()), zap.String("slug", t.Slug))
	return t, nil
}

func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, storeErr("list tenants", err)
	}
	return tenants, nil
}

func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get tenant", err)
	}
	if t == nil {
		return nil, notFound("tenant")
	}
	return t, nil
}

func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req TenantRequest) (*models.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, invalidf("name cannot be empty")
		}
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		if !validTenantStatus(*req.Status) {
			return nil, invalidf("unknown status %q", *req.Status)
		}
		t.Status = *req.Status
	}
	if req.ContactEmail != nil {
		t.ContactEmail = req.ContactEmail
	}
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, storeErr("update tenant", err)
	}
	return t, nil
}

// SetStatus suspends or reactivates a tenant.
func (s *TenantService) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Tenant, error) {
	t, err := s.Update(ctx, id, TenantRequest{Status: &status})
	if err != nil {
		return nil, err
	}
	s.log.Info("tenant status changed", zap.String("tenant_id", id.String()), zap.String("status", status))
	return t, nil
}

func (s *TenantService) Stats(ctx context.Context, id uuid.UUID) (*models.TenantStats, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.tenants.Stats(ctx, id)
	if err != nil {
		return nil, storeErr("tenant stats", err)
	}
	return stats, nil
}
